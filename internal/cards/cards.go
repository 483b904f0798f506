// Package cards builds adaptive-card payloads for rich replies.
//
// Every builder returns a freshly constructed value. Cards are rendered per
// turn and must never be shared between conversations, so there are no
// package-level template instances to mutate.
package cards

// Card is an adaptive-card payload as understood by chat clients.
type Card struct {
	Type    string  `json:"type"`
	Schema  string  `json:"$schema"`
	Version string  `json:"version"`
	Body    []Block `json:"body"`
}

// Block is one element of a card body.
type Block struct {
	Type                string  `json:"type"`
	Text                string  `json:"text,omitempty"`
	Size                string  `json:"size,omitempty"`
	Weight              string  `json:"weight,omitempty"`
	Color               string  `json:"color,omitempty"`
	Wrap                bool    `json:"wrap,omitempty"`
	Separator           bool    `json:"separator,omitempty"`
	Columns             []Block `json:"columns,omitempty"`
	Items               []Block `json:"items,omitempty"`
	Width               string  `json:"width,omitempty"`
	IsSubtle            bool    `json:"isSubtle,omitempty"`
	Spacing             string  `json:"spacing,omitempty"`
	HorizontalAlignment string  `json:"horizontalAlignment,omitempty"`
}

func newCard(body ...Block) *Card {
	return &Card{
		Type:    "AdaptiveCard",
		Schema:  "http://adaptivecards.io/schemas/adaptive-card.json",
		Version: "1.2",
		Body:    body,
	}
}

// Help returns the usage card listing the commands the bot understands.
func Help() *Card {
	return newCard(
		Block{Type: "TextBlock", Text: "Habari! I am your weather and COVID-19 assistant.", Size: "Medium", Weight: "Bolder", Wrap: true},
		Block{Type: "TextBlock", Text: "Here is what you can ask me:", Wrap: true},
		Block{Type: "TextBlock", Text: "- **check the weather** e.g. \"check the weather for London\"", Wrap: true},
		Block{Type: "TextBlock", Text: "- **check covid statistics** e.g. \"covid statistics for Kenya\"", Wrap: true},
		Block{Type: "TextBlock", Text: "- **help** to see this card again", Wrap: true},
		Block{Type: "TextBlock", Text: "You can say **cancel** at any point to stop what we are doing.", IsSubtle: true, Wrap: true},
	)
}

// CovidStats returns the statistics card. Fields fill the static layout in
// order: title, last-updated line, then the three counters.
func CovidStats(title, lastUpdated string, confirmed, recovered, deaths int64) *Card {
	return newCard(
		Block{Type: "TextBlock", Text: title, Size: "Large", Weight: "Bolder", Wrap: true},
		Block{Type: "TextBlock", Text: "Last updated: " + lastUpdated, IsSubtle: true, Wrap: true},
		Block{
			Type: "ColumnSet",
			Columns: []Block{
				statColumn("Confirmed", confirmed, "Warning"),
				statColumn("Recovered", recovered, "Good"),
				statColumn("Deaths", deaths, "Attention"),
			},
		},
	)
}

func statColumn(label string, value int64, color string) Block {
	return Block{
		Type:  "Column",
		Width: "stretch",
		Items: []Block{
			{Type: "TextBlock", Text: label, Weight: "Bolder", HorizontalAlignment: "Center"},
			{Type: "TextBlock", Text: formatCount(value), Size: "Large", Color: color, HorizontalAlignment: "Center"},
		},
	}
}

// formatCount renders a counter with thousands separators, e.g. 1234567
// becomes "1,234,567".
func formatCount(v int64) string {
	neg := v < 0
	if neg {
		v = -v
	}

	digits := []byte{}
	for {
		digits = append(digits, byte('0'+v%10))
		v /= 10
		if v == 0 {
			break
		}
	}

	out := make([]byte, 0, len(digits)+len(digits)/3+1)
	if neg {
		out = append(out, '-')
	}
	for i := len(digits) - 1; i >= 0; i-- {
		out = append(out, digits[i])
		if i > 0 && i%3 == 0 {
			out = append(out, ',')
		}
	}
	return string(out)
}
