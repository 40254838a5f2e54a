package i18n

import (
	"embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yml
var localesFS embed.FS

// Translations holds all translation strings organized by section
type Translations struct {
	Bot    BotTranslations    `yaml:"bot"`
	Fetch  FetchTranslations  `yaml:"fetch"`
	Errors ErrorTranslations  `yaml:"errors"`
	Server ServerTranslations `yaml:"server"`
}

// BotTranslations are the chat-facing messages. Entries containing
// format verbs are fed through fmt.Sprintf.
type BotTranslations struct {
	Welcome           string `yaml:"welcome"`
	SupportedSites    string `yaml:"supported_sites"`
	ModeMerge         string `yaml:"mode_merge"`
	ModeSingle        string `yaml:"mode_single"`
	CurrentQuality    string `yaml:"current_quality"`     // %s = tier
	QualityHint       string `yaml:"quality_hint"`
	QualityUsage      string `yaml:"quality_usage"`       // %s = tier
	QualityInvalid    string `yaml:"quality_invalid"`
	QualityNeedsMerge string `yaml:"quality_needs_merge"`
	QualitySaved      string `yaml:"quality_saved"`       // %s = tier
	SendLink          string `yaml:"send_link"`
	Downloading       string `yaml:"downloading"`         // %s = url, %s = tier
	Uploading         string `yaml:"uploading"`
	Done              string `yaml:"done"`
	TooLarge          string `yaml:"too_large"`           // %s = size, %s = ceiling
	DownloadError     string `yaml:"download_error"`      // %s = diagnostic
	NoArtifact        string `yaml:"no_artifact"`
	GenericError      string `yaml:"generic_error"`       // %s = error
}

// FetchTranslations cover the one-shot CLI mode.
type FetchTranslations struct {
	Fetching  string `yaml:"fetching"`
	Completed string `yaml:"completed"`
	Failed    string `yaml:"failed"`
	FileSaved string `yaml:"file_saved"`
	Elapsed   string `yaml:"elapsed"`
	Progress  string `yaml:"progress"`
	Speed     string `yaml:"speed"`
	ETA       string `yaml:"eta"`
}

type ErrorTranslations struct {
	ConfigNotFound string `yaml:"config_not_found"`
	EngineMissing  string `yaml:"engine_missing"`
	TokenMissing   string `yaml:"token_missing"`
	InvalidURL     string `yaml:"invalid_url"`
}

type ServerTranslations struct {
	NoConfigWarning string `yaml:"no_config_warning"`
	RunInitHint     string `yaml:"run_init_hint"`
	JobQueued       string `yaml:"job_queued"`
}

var (
	translationsCache = make(map[string]*Translations)
	cacheMutex        sync.RWMutex
	defaultLang       = "en"
)

// SupportedLanguages returns all available language codes
var SupportedLanguages = []struct {
	Code string
	Name string
}{
	{"en", "English"},
	{"zh", "中文"},
}

// GetTranslations returns translations for the specified language
func GetTranslations(lang string) *Translations {
	cacheMutex.RLock()
	if t, ok := translationsCache[lang]; ok {
		cacheMutex.RUnlock()
		return t
	}
	cacheMutex.RUnlock()

	t, err := loadTranslations(lang)
	if err != nil {
		// Fall back to English
		if lang != defaultLang {
			return GetTranslations(defaultLang)
		}
		return &Translations{}
	}

	cacheMutex.Lock()
	translationsCache[lang] = t
	cacheMutex.Unlock()

	return t
}

func loadTranslations(lang string) (*Translations, error) {
	filename := fmt.Sprintf("locales/%s.yml", lang)
	data, err := localesFS.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var t Translations
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, err
	}

	return &t, nil
}

// T is a convenience function for getting translations
func T(lang string) *Translations {
	return GetTranslations(lang)
}
