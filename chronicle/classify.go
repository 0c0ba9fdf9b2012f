package chronicle

import (
	"fmt"
	"log/slog"
	"path"
	"regexp"
	"strings"
)

// mediaOmittedRe matches the "<type> omitted" phrasing WhatsApp substitutes
// for shared media in exports without attachments.
var mediaOmittedRe = regexp.MustCompile(`(?i)\b(image|video|gif|sticker|audio|document)\s+omitted\b`)

// attachedRe matches the "<attached: IMG-0001.jpg>" phrasing used by exports
// that include media files.
var attachedRe = regexp.MustCompile(`(?i)<attached:\s*([^>]+)>`)

// extensionTypes maps known attachment file extensions to media subtypes.
// Anything else is recorded as MediaUnknown.
var extensionTypes = map[string]MediaType{
	".jpg":  MediaImage,
	".jpeg": MediaImage,
	".png":  MediaImage,
	".heic": MediaImage,
	".webp": MediaSticker,
	".gif":  MediaGIF,
	".mp4":  MediaVideo,
	".mov":  MediaVideo,
	".3gp":  MediaVideo,
	".opus": MediaAudio,
	".mp3":  MediaAudio,
	".m4a":  MediaAudio,
	".ogg":  MediaAudio,
	".pdf":  MediaDocument,
	".doc":  MediaDocument,
	".docx": MediaDocument,
	".xlsx": MediaDocument,
	".pptx": MediaDocument,
	".txt":  MediaDocument,
	".vcf":  MediaDocument,
}

// systemPatterns is the fixed list of known app-generated notices. A message
// whose text matches any of them is tagged KindSystem and excluded from all
// downstream content analytics, but it is never removed from the sequence so
// total counts stay diagnosable.
var systemPatterns = []*regexp.Regexp{
	regexp.MustCompile(`created this group`),
	regexp.MustCompile(`joined using this group's invite link`),
	regexp.MustCompile(`^.+ added .+$`),
	regexp.MustCompile(`^.+ left$`),
	regexp.MustCompile(`^.+ removed .+$`),
	regexp.MustCompile(`security code with .+ changed`),
	regexp.MustCompile(`changed their phone number`),
	regexp.MustCompile(`changed to .+$`),
	regexp.MustCompile(`Messages and calls are end-to-end encrypted`),
	regexp.MustCompile(`This message was deleted`),
	regexp.MustCompile(`You deleted this message`),
}

const mediaPlaceholderPrefix = "[media:"

// MediaPlaceholder is the canonical text a detected media share is rewritten
// to, so downstream text analytics never see the raw media phrasing.
func MediaPlaceholder(t MediaType, sender string) string {
	return fmt.Sprintf("%s%s] shared by %s", mediaPlaceholderPrefix, t, sender)
}

// IsMediaPlaceholder reports whether a message text is a rewritten media
// share. The sentiment batch filter relies on this.
func IsMediaPlaceholder(text string) bool {
	return strings.HasPrefix(text, mediaPlaceholderPrefix)
}

// Classify assigns Kind (and media subtype) to every message in place and
// returns the detected media items in input order.
//
// Media detection runs first: on a hit the message text is replaced with the
// canonical placeholder and a MediaItem is appended. System detection then
// runs against the possibly rewritten text. A message is never both.
func Classify(msgs []Message, log *slog.Logger) []MediaItem {
	if log == nil {
		log = slog.Default()
	}

	var items []MediaItem
	for i := range msgs {
		m := &msgs[i]

		if t, ok := detectMedia(m.Text, log); ok {
			m.Kind = KindMedia
			m.Media = t
			m.Text = MediaPlaceholder(t, m.Sender)
			items = append(items, MediaItem{Type: t, Sender: m.Sender, Timestamp: m.Timestamp})
			continue
		}

		if isSystemMessage(m.Text) {
			m.Kind = KindSystem
		}
	}
	return items
}

func detectMedia(text string, log *slog.Logger) (MediaType, bool) {
	if groups := mediaOmittedRe.FindStringSubmatch(text); groups != nil {
		return MediaType(strings.ToLower(groups[1])), true
	}

	if groups := attachedRe.FindStringSubmatch(text); groups != nil {
		name := strings.TrimSpace(groups[1])
		ext := strings.ToLower(path.Ext(name))
		if t, ok := extensionTypes[ext]; ok {
			return t, true
		}
		log.Warn("unknown_media_type", "attachment", name, "ext", ext)
		return MediaUnknown, true
	}

	return "", false
}

func isSystemMessage(text string) bool {
	for _, p := range systemPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// AttributeMediaReactions fills in each media item's reaction count by
// summing the emoji counts of all messages within the engagement window
// following the share. Items must be in the same order they were detected.
func AttributeMediaReactions(items []MediaItem, msgs []Message) {
	for i := range items {
		deadline := items[i].Timestamp.Add(engagementWindow)
		for _, m := range msgs {
			if !m.Timestamp.After(items[i].Timestamp) {
				continue
			}
			if m.Timestamp.After(deadline) {
				break
			}
			items[i].Reactions += CountEmojis(m.Text)
		}
	}
}
