package discord

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"

	"github.com/purochile/pcbot/internal/command"
)

// Embed colors per severity
const (
	ColorSuccess = 0x2ecc71
	ColorInfo    = 0x3498db
	ColorWarning = 0xe67e22
	ColorError   = 0xe74c3c
)

// Discord rejects embeds above these limits
const (
	maxFields     = 25
	maxTitle      = 256
	maxFieldName  = 256
	maxFieldValue = 1024
	maxBody       = 4096
	maxFooter     = 2048
	maxTotal      = 6000
)

// Fields are shortened down to this many characters before any is dropped
const minFieldValue = 64

// Embed renders a command response
func Embed(resp command.Response, now time.Time) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       truncate(resp.Title, maxTitle),
		Description: truncate(resp.Body, maxBody),
		Color:       colorFor(resp.Severity),
		Timestamp:   now.Format(time.RFC3339),
	}
	for _, f := range resp.Fields {
		value := f.Value
		if value == "" {
			value = "-"
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   truncate(f.Name, maxFieldName),
			Value:  truncate(value, maxFieldValue),
			Inline: f.Inline,
		})
	}

	dropped := 0
	if len(embed.Fields) > maxFields {
		dropped = len(embed.Fields) - maxFields
		embed.Fields = embed.Fields[:maxFields]
	}
	dropped += fitTotal(embed, resp.Footer, dropped)

	if footer := footerText(resp.Footer, dropped); footer != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: truncate(footer, maxFooter)}
	}
	return embed
}

// fitTotal shrinks field values evenly, then drops trailing fields, until the
// embed fits maxTotal. It returns how many fields it dropped.
func fitTotal(embed *discordgo.MessageEmbed, footer string, dropped int) int {
	fixed := func() int {
		n := runeLen(embed.Title) + runeLen(embed.Description) + runeLen(truncate(footerText(footer, dropped), maxFooter))
		for _, f := range embed.Fields {
			n += runeLen(f.Name)
		}
		return n
	}

	values := 0
	for _, f := range embed.Fields {
		values += runeLen(f.Value)
	}
	if fixed()+values <= maxTotal {
		return 0
	}

	removed := 0
	for len(embed.Fields) > 0 {
		share := (maxTotal - fixed()) / len(embed.Fields)
		if share >= minFieldValue {
			for _, f := range embed.Fields {
				f.Value = truncate(f.Value, share)
			}
			return removed
		}
		embed.Fields = embed.Fields[:len(embed.Fields)-1]
		removed++
		dropped++
	}

	if over := fixed() - maxTotal; over > 0 {
		embed.Description = truncate(embed.Description, max(runeLen(embed.Description)-over, 1))
	}
	return removed
}

func footerText(footer string, dropped int) string {
	if dropped == 0 {
		return footer
	}
	more := fmt.Sprintf("…and %d more", dropped)
	if footer == "" {
		return more
	}
	return footer + " · " + more
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

func colorFor(severity command.Severity) int {
	switch severity {
	case command.SeveritySuccess:
		return ColorSuccess
	case command.SeverityWarning:
		return ColorWarning
	case command.SeverityError:
		return ColorError
	default:
		return ColorInfo
	}
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	if limit <= 1 {
		return "…"
	}
	return string(r[:limit-1]) + "…"
}
