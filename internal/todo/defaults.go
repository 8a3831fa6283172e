package todo

import (
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Aidin1998/todolist/pkg/models"
)

// TodayListName is the title of the implicit list backed by the Items collection.
const TodayListName = "Today"

var defaultItemNames = [...]string{
	"Welcome to your To-Do List!",
	"Hit the + button to add a new Item.",
	"Check off items once you're done!",
}

// DefaultItems returns fresh seed items. Each call allocates new items with
// new IDs, so seeded lists never share entries.
func DefaultItems() []models.Item {
	items := make([]models.Item, 0, len(defaultItemNames))
	for _, name := range defaultItemNames {
		items = append(items, models.NewItem(name))
	}
	return items
}

// Capitalize upper-cases the first rune of s and lower-cases the rest.
func Capitalize(s string) string {
	lower := strings.ToLower(s)
	r, size := utf8.DecodeRuneInString(lower)
	if r == utf8.RuneError {
		return lower
	}
	return string(unicode.ToUpper(r)) + lower[size:]
}

// ListPath is the URL path a list is rendered at.
func ListPath(name string) string {
	if name == TodayListName {
		return "/"
	}
	return "/" + url.PathEscape(name)
}
