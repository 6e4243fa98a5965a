package models

// Patch maps a song key to the replacement file name per locale. A patch
// lets a locale without its own file point at a file from its folder.
type Patch map[string]map[string]string

// Get returns the patched file for key and locale.
func (p Patch) Get(key, locale string) (string, bool) {
	if p == nil {
		return "", false
	}
	file, ok := p[key][locale]
	return file, ok
}

// Set records file for key and locale.
func (p Patch) Set(key, locale, file string) {
	if p[key] == nil {
		p[key] = make(map[string]string)
	}
	p[key][locale] = file
}

// PatchEntry is one stored patch row.
type PatchEntry struct {
	ID        string `json:"id"`
	SongKey   string `json:"key"`
	Locale    string `json:"locale"`
	File      string `json:"file"`
	CreatedAt int64  `json:"createdAt"` // Unix seconds
}
