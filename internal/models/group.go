package models

import (
	"sort"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// UngroupedKey collects contacts whose name does not start with a letter.
const UngroupedKey = "#"

// ContactGroup is the set of contacts sharing an initial.
type ContactGroup struct {
	Letter   string    `json:"letter"`
	Contacts []Contact `json:"contacts"`
}

// Initial returns the upper-cased first letter of name, or UngroupedKey.
func Initial(name string) string {
	r, _ := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError || !unicode.IsLetter(r) {
		return UngroupedKey
	}
	return cases.Upper(language.Und).String(string(r))
}

type byName struct {
	list []Contact
	keys []string
}

func (b byName) Len() int { return len(b.list) }

func (b byName) Less(i, j int) bool {
	if b.keys[i] != b.keys[j] {
		return b.keys[i] < b.keys[j]
	}
	if b.list[i].Name != b.list[j].Name {
		return b.list[i].Name < b.list[j].Name
	}
	return b.list[i].ID < b.list[j].ID
}

func (b byName) Swap(i, j int) {
	b.list[i], b.list[j] = b.list[j], b.list[i]
	b.keys[i], b.keys[j] = b.keys[j], b.keys[i]
}

// SortByName orders contacts by case-folded name, then by exact name and id.
func SortByName(contacts []Contact) {
	fold := cases.Fold()
	keys := make([]string, len(contacts))
	for i, c := range contacts {
		keys[i] = fold.String(c.Name)
	}
	sort.Sort(byName{list: contacts, keys: keys})
}

// GroupByInitial groups contacts by Initial, keeping the input order inside
// each group. Groups are ordered by key.
func GroupByInitial(contacts []Contact) []ContactGroup {
	index := make(map[string]int)
	var groups []ContactGroup

	for _, c := range contacts {
		key := Initial(c.Name)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, ContactGroup{Letter: key})
		}
		groups[i].Contacts = append(groups[i].Contacts, c)
	}

	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Letter < groups[j].Letter })
	return groups
}
