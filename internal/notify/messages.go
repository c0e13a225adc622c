package notify

import (
	"os"
	"strings"
)

type locale string

const (
	localeEnglish locale = "en"
)

type messages struct {
	title     string
	listening string
	thinking  string
	errorText string
}

func messagesFromEnv() messages {
	return localizedMessages(resolveLocale(os.Getenv("LANG")))
}

func resolveLocale(raw string) locale {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if strings.HasPrefix(raw, "en") {
		return localeEnglish
	}
	return localeEnglish
}

func localizedMessages(tag locale) messages {
	switch tag {
	case localeEnglish:
		fallthrough
	default:
		return messages{
			title:     "Assistant",
			listening: "Listening…",
			thinking:  "Thinking…",
			errorText: "Assistant error",
		}
	}
}
