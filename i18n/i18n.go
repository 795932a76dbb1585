// Package i18n translates UI strings. Keys are the English text, so a
// missing translation falls back to readable English.
package i18n

import (
	"strings"
	"sync/atomic"

	"github.com/jeandeaual/go-locale"
	"github.com/sirupsen/logrus"
)

const DefaultLang = "en"

// Supported lists the selectable languages in display order.
var Supported = []string{"en", "tr"}

var lang atomic.Value

func init() {
	lang.Store(DefaultLang)
}

var translations = map[string]map[string]string{
	"Connected":             {"tr": "Bağlandı"},
	"Connecting...":         {"tr": "Bağlanıyor..."},
	"Disconnected":          {"tr": "Bağlantı kesildi"},
	"Reconnect":             {"tr": "Yeniden Bağlan"},
	"Close":                 {"tr": "Kapat"},
	"Settings":              {"tr": "Ayarlar"},
	"AUTO-LOCK":             {"tr": "OTO-KİLİT"},
	"OFF":                   {"tr": "KAPALI"},
	"Waiting for Match":     {"tr": "Maç Bekleniyor"},
	"ALLIES":                {"tr": "TAKIMIM"},
	"ENEMIES":               {"tr": "DÜŞMANLAR"},
	"Selecting...":          {"tr": "Seçiliyor..."},
	"Locked":                {"tr": "Kilitli"},
	"Lvl":                   {"tr": "Svye"},
	"Rank":                  {"tr": "Rütbe"},
	"Party":                 {"tr": "Parti"},
	"Auto-Lock Agent":       {"tr": "Otomatik Ajan Kilidi"},
	"Disable Auto-Lock":     {"tr": "Auto-Lock Kapat"},
	"Language":              {"tr": "Dil"},
	"Toggle Hotkey":         {"tr": "Açma/Kapama Tuşu"},
	"Change":                {"tr": "Değiştir"},
	"Press a key...":        {"tr": "Bir tuşa basın..."},
	"Hotkey already in use": {"tr": "Tuş zaten kullanımda"},
	"Start a match to see player data": {
		"tr": "Oyuncu verilerini görmek için maç başlatın",
	},
}

// Detect picks the UI language. A non-empty override wins; otherwise the
// first system locale is used when supported.
func Detect(override string) string {
	if forced := strings.TrimSpace(override); forced != "" {
		logrus.WithField("lang", forced).Debug("language override set")
		return normalize(forced)
	}

	userLocales, err := locale.GetLocales()
	if err != nil || len(userLocales) == 0 {
		logrus.Debug("no user locale detected, defaulting to english")
		return DefaultLang
	}
	logrus.WithField("locale", userLocales[0]).Debug("detected user locale")
	return normalize(userLocales[0])
}

func normalize(tag string) string {
	tag = strings.ToLower(tag)
	for _, l := range Supported {
		if strings.HasPrefix(tag, l) {
			return l
		}
	}
	return DefaultLang
}

// SetLang changes the active language. Unsupported values select English.
func SetLang(l string) {
	lang.Store(normalize(l))
}

// GetLang returns the active language.
func GetLang() string {
	return lang.Load().(string)
}

func T(key string) string {
	if translated, ok := translations[key][GetLang()]; ok {
		return translated
	}
	return key
}
