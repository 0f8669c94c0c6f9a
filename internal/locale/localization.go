// Package locale holds every user-visible string of the application and
// resolves them for the selected language with an English fallback.
package locale

import (
	"fmt"
	"sync"
)

// Localization manages UI text translations
type Localization struct {
	mu              sync.RWMutex
	currentLanguage string
	texts           map[string]map[string]string
}

// Text keys for localization
const (
	KeyAppTitle      = "app_title"
	KeyStartTest     = "start_test"
	KeyTesting       = "testing"
	KeyDownload      = "download"
	KeyUpload        = "upload"
	KeyPing          = "ping"
	KeyUnitMbps      = "unit_mbps"
	KeyUnitMs        = "unit_ms"
	KeySettings      = "settings"
	KeyFile          = "file"
	KeyLanguage      = "language"
	KeySave          = "save"
	KeyCancel        = "cancel"
	KeySettingsSaved = "settings_saved"
	KeyTheme         = "theme"
	KeyServer        = "server"

	KeyStatusReady          = "status_ready"
	KeyStatusInitializing   = "status_initializing"
	KeyStatusFindingServer  = "status_finding_server"
	KeyStatusDownloading    = "status_downloading"
	KeyStatusDownloadingVia = "status_downloading_via"
	KeyStatusUploading      = "status_uploading"
	KeyStatusComplete       = "status_complete"

	KeyErrConfigRetrieval = "err_config_retrieval"
	KeyErrNoServers       = "err_no_servers"
	KeyErrAccessDenied    = "err_access_denied"
	KeyErrGeneric         = "err_generic"
)

// NewLocalization creates a new localization manager
func NewLocalization() *Localization {
	l := &Localization{
		currentLanguage: "en",
		texts:           make(map[string]map[string]string),
	}

	l.initializeTexts()
	return l
}

// SetLanguage sets the current language
func (l *Localization) SetLanguage(lang string) {
	if lang == "system" {
		// Use system locale - simplified to English for now
		lang = "en"
	}

	if _, exists := l.texts[lang]; exists {
		l.mu.Lock()
		l.currentLanguage = lang
		l.mu.Unlock()
	}
}

// GetText returns localized text for the given key
func (l *Localization) GetText(key string) string {
	if texts, exists := l.texts[l.GetCurrentLanguage()]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	// Fallback to English
	if texts, exists := l.texts["en"]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	// Final fallback - return key itself
	return key
}

// Format returns the localized text for key formatted with args
func (l *Localization) Format(key string, args ...interface{}) string {
	return fmt.Sprintf(l.GetText(key), args...)
}

// GetCurrentLanguage returns the current language code
func (l *Localization) GetCurrentLanguage() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.currentLanguage
}

// GetAvailableLanguages returns map of available languages with their display names
func (l *Localization) GetAvailableLanguages() map[string]string {
	return map[string]string{
		"en": "English",
		"ru": "Русский",
		"pt": "Português",
	}
}

func (l *Localization) initializeTexts() {
	l.texts["en"] = map[string]string{
		KeyAppTitle:      "FluxNet Speed Tester",
		KeyStartTest:     "Start Speed Test",
		KeyTesting:       "Testing...",
		KeyDownload:      "Download:",
		KeyUpload:        "Upload:",
		KeyPing:          "Ping:",
		KeyUnitMbps:      "Mbps",
		KeyUnitMs:        "ms",
		KeySettings:      "Settings",
		KeyFile:          "File",
		KeyLanguage:      "Language",
		KeySave:          "Save",
		KeyCancel:        "Cancel",
		KeySettingsSaved: "Settings saved successfully!",
		KeyTheme:         "Theme",
		KeyServer:        "Server:",

		KeyStatusReady:          "Click 'Start Speed Test' to begin.",
		KeyStatusInitializing:   "Initializing speed test...",
		KeyStatusFindingServer:  "Finding best server...",
		KeyStatusDownloading:    "Testing download speed...",
		KeyStatusDownloadingVia: "Testing download speed via %s...",
		KeyStatusUploading:      "Testing upload speed...",
		KeyStatusComplete:       "Test Complete!",

		KeyErrConfigRetrieval: "Error: Cannot connect to Speedtest.net.",
		KeyErrNoServers:       "Error: No suitable test servers found.",
		KeyErrAccessDenied:    "Error: Access denied by Speedtest.net (403). Try later...",
		KeyErrGeneric:         "Error: %s...",
	}

	l.texts["ru"] = map[string]string{
		KeyAppTitle:      "FluxNet — тест скорости",
		KeyStartTest:     "Начать тест",
		KeyTesting:       "Тестирование...",
		KeyDownload:      "Загрузка:",
		KeyUpload:        "Отдача:",
		KeyPing:          "Пинг:",
		KeyUnitMbps:      "Мбит/с",
		KeyUnitMs:        "мс",
		KeySettings:      "Настройки",
		KeyFile:          "Файл",
		KeyLanguage:      "Язык",
		KeySave:          "Сохранить",
		KeyCancel:        "Отмена",
		KeySettingsSaved: "Настройки успешно сохранены!",
		KeyTheme:         "Тема",
		KeyServer:        "Сервер:",

		KeyStatusReady:          "Нажмите «Начать тест», чтобы начать.",
		KeyStatusInitializing:   "Подготовка теста...",
		KeyStatusFindingServer:  "Поиск лучшего сервера...",
		KeyStatusDownloading:    "Измерение скорости загрузки...",
		KeyStatusDownloadingVia: "Измерение скорости загрузки через %s...",
		KeyStatusUploading:      "Измерение скорости отдачи...",
		KeyStatusComplete:       "Тест завершён!",

		KeyErrConfigRetrieval: "Ошибка: нет связи со Speedtest.net.",
		KeyErrNoServers:       "Ошибка: подходящие серверы не найдены.",
		KeyErrAccessDenied:    "Ошибка: Speedtest.net отказал в доступе (403). Попробуйте позже...",
		KeyErrGeneric:         "Ошибка: %s...",
	}

	l.texts["pt"] = map[string]string{
		KeyAppTitle:      "FluxNet Speed Tester",
		KeyStartTest:     "Iniciar teste",
		KeyTesting:       "Testando...",
		KeyDownload:      "Download:",
		KeyUpload:        "Upload:",
		KeyPing:          "Ping:",
		KeyUnitMbps:      "Mbps",
		KeyUnitMs:        "ms",
		KeySettings:      "Configurações",
		KeyFile:          "Arquivo",
		KeyLanguage:      "Idioma",
		KeySave:          "Salvar",
		KeyCancel:        "Cancelar",
		KeySettingsSaved: "Configurações salvas com sucesso!",
		KeyTheme:         "Tema",
		KeyServer:        "Servidor:",

		KeyStatusReady:          "Clique em 'Iniciar teste' para começar.",
		KeyStatusInitializing:   "Preparando o teste...",
		KeyStatusFindingServer:  "Procurando o melhor servidor...",
		KeyStatusDownloading:    "Testando velocidade de download...",
		KeyStatusDownloadingVia: "Testando velocidade de download via %s...",
		KeyStatusUploading:      "Testando velocidade de upload...",
		KeyStatusComplete:       "Teste concluído!",

		KeyErrConfigRetrieval: "Erro: não foi possível conectar ao Speedtest.net.",
		KeyErrNoServers:       "Erro: nenhum servidor de teste adequado encontrado.",
		KeyErrAccessDenied:    "Erro: acesso negado pelo Speedtest.net (403). Tente mais tarde...",
		KeyErrGeneric:         "Erro: %s...",
	}
}
