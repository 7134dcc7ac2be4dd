package domain

// Idea is a free-form note captured from chat. Append and delete only.
type Idea struct {
	Title   string
	Content string
}

// ideaTitleRunes bounds the title derived from the content.
const ideaTitleRunes = 40

// NewIdea builds an Idea whose title is the leading part of content.
func NewIdea(content string) Idea {
	title := content
	if r := []rune(content); len(r) > ideaTitleRunes {
		title = string(r[:ideaTitleRunes])
	}
	return Idea{Title: title, Content: content}
}
