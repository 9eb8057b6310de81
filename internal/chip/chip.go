// Package chip extracts a menu payload embedded in a chat reply.
//
// The generator replies in free text and appends exactly one
// <MENU>{...}</MENU> block whose JSON carries "type": "menu_chip".
package chip

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

// ChipType is the required value of the payload's "type" field.
const ChipType = "menu_chip"

// Defaults used when the reply omits them.
const (
	DefaultTitle = "CARDÁPIO SEMANAL"
	DefaultReply = "Claro! Aqui está o seu cardápio!"
)

var menuBlockPattern = regexp.MustCompile(`(?is)<MENU>(.*?)</MENU>`)

// Chip is a menu found in a chat reply.
type Chip struct {
	Title     string
	DateRange string
	Payload   []byte // the JSON object inside the block, verbatim
}

// Parse splits raw into the text shown to the user and the embedded chip.
// ok is false when no block is present, the block is not valid JSON, or its
// type is not ChipType; text is then the whole reply, trimmed.
func Parse(raw string) (text string, c Chip, ok bool) {
	loc := menuBlockPattern.FindStringSubmatchIndex(raw)
	if loc == nil {
		return strings.TrimSpace(raw), Chip{}, false
	}

	c, ok = Decode([]byte(raw[loc[2]:loc[3]]))
	if !ok {
		return strings.TrimSpace(raw), Chip{}, false
	}

	var parts []string
	for _, p := range []string{raw[:loc[0]], raw[loc[1]:]} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	text = strings.Join(parts, "\n\n")
	if text == "" {
		text = DefaultReply
	}

	return text, c, true
}

// Decode reads a chip from the JSON object found inside a block.
// ok is false when body is not valid JSON or its type is not ChipType.
func Decode(body []byte) (c Chip, ok bool) {
	body = bytes.TrimSpace(body)
	if !gjson.ValidBytes(body) {
		return Chip{}, false
	}
	doc := gjson.ParseBytes(body)
	if doc.Get("type").String() != ChipType {
		return Chip{}, false
	}

	c = Chip{
		Title:   DefaultTitle,
		Payload: body,
	}
	if t := doc.Get("title"); t.Exists() && t.Type != gjson.Null {
		c.Title = t.String()
	}
	if d := doc.Get("dateRange"); d.Exists() && d.Type != gjson.Null && d.String() != "" {
		c.DateRange = d.String()
	}
	return c, true
}
