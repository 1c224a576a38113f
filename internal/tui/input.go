package tui

import "unicode/utf8"

// maxInputLen is the maximum number of runes allowed in search and form inputs.
const maxInputLen = 240

// editRune applies one keystroke to an inline text field: backspace drops
// the last rune, a printable rune is appended up to maxInputLen, and every
// other key leaves text as it is.
func editRune(text, key string) string {
	if key == "backspace" {
		if r := []rune(text); len(r) > 0 {
			return string(r[:len(r)-1])
		}
		return text
	}
	if key == "space" {
		key = " "
	}
	if utf8.RuneCountInString(key) != 1 || utf8.RuneCountInString(text) >= maxInputLen {
		return text
	}
	return text + key
}

// truncateToHeight keeps the first maxLines lines of s, newline included.
func truncateToHeight(s string, maxLines int) string {
	if maxLines <= 0 {
		return s
	}
	lines := 0
	for i, c := range []byte(s) {
		if c != '\n' {
			continue
		}
		if lines++; lines == maxLines {
			return s[:i+1]
		}
	}
	return s
}

// renderSearch renders the one-line search input shared by list screens.
func renderSearch(text string, focused bool) string {
	prompt := inputPromptStyle.Render("/ ")
	if !focused {
		if text == "" {
			return " " + prompt + inputPlaceholderStyle.Render("search (press /)")
		}
		return " " + prompt + dimStyle.Render(text)
	}
	return " " + prompt + searchStyle.Render(text) + accentStyle.Render("█")
}

// maskSecret hides a password while keeping its length visible.
func maskSecret(s string) string {
	n := utf8.RuneCountInString(s)
	out := make([]rune, n)
	for i := range out {
		out[i] = '•'
	}
	return string(out)
}
