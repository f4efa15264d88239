package i18n

import (
	"embed"
	"encoding/json"
	"sync"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var locales embed.FS

var (
	mu     sync.RWMutex
	bundle *goi18n.Bundle
)

// Init builds the bundle from the embedded locale files. Safe to call twice.
func Init() error {
	b := goi18n.NewBundle(language.English)
	b.RegisterUnmarshalFunc("json", json.Unmarshal)
	for _, name := range []string{"locales/active.en.json", "locales/active.id.json"} {
		if _, err := b.LoadMessageFileFS(locales, name); err != nil {
			return err
		}
	}

	mu.Lock()
	bundle = b
	mu.Unlock()
	return nil
}

// Load adds an extra message file from disk on top of the embedded ones.
func Load(path string) error {
	mu.Lock()
	defer mu.Unlock()
	if bundle == nil {
		bundle = goi18n.NewBundle(language.English)
		bundle.RegisterUnmarshalFunc("json", json.Unmarshal)
	}
	_, err := bundle.LoadMessageFile(path)
	return err
}

// Localize renders messageID for the Accept-Language style lang list, falling
// back to fallback when the bundle is missing or the id is unknown.
func Localize(lang, messageID string, data map[string]any, fallback string) string {
	mu.RLock()
	b := bundle
	mu.RUnlock()
	if b == nil || messageID == "" {
		return fallback
	}

	localizer := goi18n.NewLocalizer(b, lang, language.English.String())
	msg, err := localizer.Localize(&goi18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: data,
	})
	if err != nil || msg == "" {
		return fallback
	}
	return msg
}
