package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP clients (vCard fetcher, share client, blob store).
var UserAgent = "Go-YearTiles/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName         = "Year Tiles"
	AppID           = "com.github.tartampluch.go-yeartiles"
	KeyringService  = "com.github.tartampluch.go-yeartiles"
	KeyringBlobUser = "blob-write-token"
	LogFileName     = "app.log"
	IconFile        = "Icon.png"
	EnvPrefix       = "YEARTILES"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagVersion      = "version"
	FlagDebug        = "debug"
	FlagAPI          = "api"
	FlagDescVersion  = "Show application version and exit"
	FlagDescDebug    = "Enable debug logging to stdout"
	FlagDescAPI      = "Base URL of the year-tiles API used to generate share links"
	MsgVersionOutput = "%s version %s (%s/%s)\n"

	FlagTimeZone    = "tz"
	FlagCompact     = "s"
	FlagSpecialJSON = "special"
	FlagWidth       = "width"
	FlagHeight      = "height"
	FlagLang        = "lang"
	FlagOut         = "out"
	FlagColumns     = "columns"

	FlagDescTimeZone = "IANA time zone used to compute today"
	FlagDescCompact  = "Special days in compact form (month-day-color-label-flag, joined by ~)"
	FlagDescSpecial  = "Special days as a JSON array"
	FlagDescWidth    = "Wallpaper width in pixels"
	FlagDescHeight   = "Wallpaper height in pixels"
	FlagDescLang     = "Caption language"
	FlagDescOut      = "Output PNG path, - for stdout"
	FlagDescColumns  = "Tiles per row"
	StdoutPath       = "-"
)

// -----------------------------------------------------------------------------
// CLI Commands
// -----------------------------------------------------------------------------

const (
	CmdRoot         = "yeartiles"
	CmdRootShort    = "Year progress wallpapers: API server and command line renderer"
	CmdServe        = "serve"
	CmdServeShort   = "Run the HTTP API (configured from YEARTILES_* variables)"
	CmdRender       = "render"
	CmdRenderShort  = "Render a wallpaper PNG"
	CmdPreview      = "preview"
	CmdPreviewShort = "Print the year grid in the terminal"
	CmdVersion      = "version"
	CmdVersionShort = "Print the version"
)

// -----------------------------------------------------------------------------
// Settings & Preferences
// -----------------------------------------------------------------------------

const (
	// PrefSettingsBlob is the single key holding the serialized Settings document.
	PrefSettingsBlob = "lifecal_settings_v1"
	PrefLanguage     = "language"
	PrefAPIBaseURL   = "api_base_url"
	PrefLastRun      = "last_run_version"
	PrefPreset       = "wallpaper_preset"
	PrefVCardURL     = "vcard_url"
	PrefVCardUser    = "vcard_user"
)

// DefaultLanguage is used when no preference or match exists.
const DefaultLanguage = "en"

// -----------------------------------------------------------------------------
// Year Grid & Palette
// -----------------------------------------------------------------------------

const (
	// Neutral tile colors. Special days override the display color only.
	ColorToday  = "#ff6a3d"
	ColorPast   = "#ffffff"
	ColorFuture = "#2c2c2c"

	ColorBackground = "#09090b"
	ColorTextStrong = "#fafafa"
	ColorTextMuted  = "#52525b"
	ColorTextFaint  = "#27272a"

	DefaultSpecialColor = "#e879f9"
	DefaultTimeZone     = "UTC"
	DefaultLeapYear     = 2000 // Leap year used to validate month/day pairs such as --02-29

	GridColumns    = 15
	MaxLabelLength = 40

	// MidnightSlack is added after the computed midnight so the timer never fires early.
	MidnightSlack = 25 * time.Millisecond

	DateFormatISO = "2006-01-02"

	// FormatSpecialRow expects month, day and a caption.
	FormatSpecialRow = "%02d-%02d · %s"
)

// SpecialColorOptions is the palette offered by the special-date editor.
var SpecialColorOptions = []string{
	"#e879f9",
	"#f472b6",
	"#fb7185",
	"#fb923c",
	"#fbbf24",
	"#a3e635",
	"#34d399",
	"#22d3ee",
}

// CommonTimeZones seeds the timezone selector; the active zone is always added.
var CommonTimeZones = []string{
	"UTC",
	"America/Los_Angeles",
	"America/Denver",
	"America/Chicago",
	"America/New_York",
	"America/Sao_Paulo",
	"Europe/London",
	"Europe/Paris",
	"Europe/Berlin",
	"Africa/Johannesburg",
	"Asia/Dubai",
	"Asia/Kolkata",
	"Asia/Shanghai",
	"Asia/Tokyo",
	"Australia/Sydney",
	"Pacific/Auckland",
}

// -----------------------------------------------------------------------------
// Wallpaper Rendering
// -----------------------------------------------------------------------------

const (
	DefaultWidth  = 1170
	DefaultHeight = 2532
	MinWidth      = 800
	MaxWidth      = 3000
	MinHeight     = 1200
	MaxHeight     = 4000

	DefaultWallpaperPreset = "1170x2532"
	PresetSeparator        = "x"

	ScaleReferenceWidth = 400.0
	MaxScale            = 3.0

	TileBaseSize   = 11
	TileMinSize    = 9
	TileBaseRadius = 2
	TileMinRadius  = 2
	GapBase        = 5
	GapMin         = 5
	TextBaseSize   = 12
	TextMinSize    = 12
	TextMaxSize    = 42
	TextGapBase    = 24
	TextGapMin     = 14
	SpanGapMin     = 8

	TopOffsetRatio   = 0.265
	LabelScale       = 1.2
	GlowInnerRatio   = 0.12
	GlowOuterRatio   = 0.25
	GlowInnerSpread  = 0.04
	GlowOuterSpread  = 0.08
	GlowInnerAlpha   = 0x30
	GlowOuterAlpha   = 0x18
	TextSeparatorDot = "·"
	PercentSign      = "%"
)

// WallpaperPresets lists the phone sizes offered by the desktop shell.
var WallpaperPresets = []string{
	"1170x2532",
	"1179x2556",
	"1290x2796",
	"1080x2400",
	"1440x3200",
}

// -----------------------------------------------------------------------------
// Compact Encoding
// -----------------------------------------------------------------------------

const (
	CompactEntrySep = "~"
	CompactFieldSep = "-"
	CompactBirthday = "b"
	ColorPrefix     = "#"
)

// -----------------------------------------------------------------------------
// Profile Store
// -----------------------------------------------------------------------------

const (
	StoreAuto     = "auto"
	StoreBlob     = "blob"
	StoreFile     = "file"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreEncoded  = "encoded"

	DefaultDataFile   = ".data/profiles.json"
	DefaultSQLitePath = ".data/profiles.db"

	ProfileKeyPrefix    = "profiles/"
	ProfileKeySuffix    = ".json"
	EncodedIDPrefix     = "e."
	MaxIDAttempts       = 8
	MaxRequestBodySize  = 1 << 20 // 1MB
	MaxVCardUploadBytes = 8 << 20 // 8MB
)

// -----------------------------------------------------------------------------
// Standards: iCalendar & vCard
// -----------------------------------------------------------------------------

const (
	// iCal Properties
	ICalVersion = "2.0"
	ICalProdid  = "-//Year Tiles//Engine//EN"
	ICalCalName = "Special days"
	ICalMethod  = "PUBLISH"
	ICalScale   = "GREGORIAN"
	ICalDomain  = "yeartiles"

	// iCal/vCard Fields
	PropUID        = "UID"
	PropSummary    = "SUMMARY"
	PropDTStart    = "DTSTART"
	PropDTStamp    = "DTSTAMP"
	PropRefresh    = "REFRESH-INTERVAL"
	PropVersion    = "VERSION"
	PropProdid     = "PRODID"
	PropXWRCalName = "X-WR-CALNAME"
	PropCalScale   = "CALSCALE"
	PropMethod     = "METHOD"

	VCardBDAY = "BDAY"
	VCardFN   = "FN"

	DefaultICalRefresh = 12 * time.Hour
)

// -----------------------------------------------------------------------------
// Data Formats, Limits & File Extensions
// -----------------------------------------------------------------------------

const (
	// Date layouts used for parsing vCard BDAY fields
	DateFormatFullDash  = "2006-01-02"
	DateFormatFullBasic = "20060102"
	DateFormatRFC3339   = time.RFC3339
	DateFormatFullT     = "2006-01-02T15:04:05Z"
	DateFormatNoYearD   = "--01-02"
	DateFormatNoYearB   = "--0102"

	// UID Generation
	FormatUID = "%02d%02d-%s@%s"

	// File Extensions
	ExtVCF   = ".vcf"
	ExtVCard = ".vcard"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout         = 30 * time.Second
	ShutdownTimeout     = 5 * time.Second
	ServerReadTimeout   = 10 * time.Second
	ServerWriteTimeout  = 30 * time.Second
	ServerIdleTimeout   = 60 * time.Second
	MaxHTTPResponseSize = 256 * 1024 * 1024 // 256MB
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
	HeaderAccept        = "Accept"
	AcceptVCard         = "text/vcard, text/x-vcard;q=0.9, */*;q=0.1"
	AddrSeparator       = ":"
	DefaultAPIBaseURL   = "http://127.0.0.1:8080"

	RouteImage       = "/api/image"
	RouteProfile     = "/api/profile"
	RouteProfileByID = "/api/profile/{id}"
	RouteCalendar    = "/api/calendar"
	RouteImportVCard = "/api/import/vcard"
	RouteHealth      = "/api/health"
	RouteMetrics     = "/metrics"
	PathVarID        = "id"

	QueryID      = "id"
	QueryTZ      = "tz"
	QueryWidth   = "w"
	QueryHeight  = "h"
	QuerySpecial = "special"
	QueryCompact = "s"
	QueryLang    = "lang"
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType   = "Content-Type"
	HeaderCacheControl  = "Cache-Control"
	HeaderETag          = "ETag"
	HeaderXContentType  = "X-Content-Type-Options"
	HeaderUserAgent     = "User-Agent"
	HeaderIfNoneMatch   = "If-None-Match"
	HeaderAuthorization = "Authorization"
	HeaderRequestID     = "X-Request-ID"
	HeaderCookie        = "Cookie"

	MimeJSON            = "application/json"
	MimePNG             = "image/png"
	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeNoSniff         = "nosniff"
	CacheControlPublic  = "public, max-age=300"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// API Error Codes (machine readable, cross the HTTP boundary)
// -----------------------------------------------------------------------------

const (
	CodeInvalidBody       = "invalid-body"
	CodeInvalidTimeZone   = "invalid-timezone"
	CodeNotFound          = "not-found"
	CodeStorageError      = "storage-error"
	CodeBlobNotConfigured = "blob-not-configured"
	CodeInternal          = "internal-error"
	StatusOK              = "ok"
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrFetcherMissing   = "internal error: network fetcher is not initialized"
	ErrServerStartup    = "server startup failed"
	ErrServerShutdown   = "server shutdown failed"
	ErrPortRequired     = "server port is required"
	ErrInvalidURL       = "invalid URL structure"
	ErrProtocol         = "unsupported protocol scheme (http/https only)"
	ErrFetchNetwork     = "vcard download failed"
	ErrFetchStatus      = "vcard server answered"
	ErrVCardParse       = "failed to parse vCard stream"
	ErrICalEncode       = "failed to encode iCalendar data"
	ErrDateParse        = "unable to parse date"
	ErrLogFile          = "failed to open log file"
	ErrCacheDir         = "could not determine user cache dir"
	ErrCreateDir        = "could not create app cache dir"
	ErrAppFailed        = "application failed unexpectedly"
	ErrWriteResp        = "failed to write response body"
	ErrLocalesAccess    = "failed to access embedded locales"
	ErrLocaleLoad       = "failed to load locale file"
	ErrEnvConfig        = "failed to process environment variables"
	ErrUnknownStore     = "unsupported profile store"
	ErrStoreOpen        = "failed to open profile store"
	ErrStoreRead        = "failed to read profile store"
	ErrStoreWrite       = "failed to write profile store"
	ErrProfileEncode    = "failed to encode profile"
	ErrIDExhausted      = "could not allocate a free profile id"
	ErrBlobStatus       = "object store returned unexpected status"
	ErrRenderEncode     = "failed to encode PNG"
	ErrFontLoad         = "failed to load font"
	ErrShareRequest     = "share request failed"
	ErrShareStatus      = "share endpoint returned unexpected status"
	ErrInvalidPreset    = "invalid wallpaper preset"
	ErrPostgresDSN      = "postgres DSN is required when STORE=postgres"
	ErrLambdaBody       = "failed to decode lambda request body"
	ErrSettingsEncode   = "failed to encode settings"
	ErrWriteFile        = "failed to write output file"
)

// -----------------------------------------------------------------------------
// Fallbacks & Defaults
// -----------------------------------------------------------------------------

const (
	FallbackName         = "Unknown"
	FallbackSpecialTitle = "Special day"
	FallbackBirthday     = "Birthday: %s"
	FallbackDaysLeft     = "days left"

	// StubVCalendar is the minimal valid iCalendar object used when no events are found.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"

	MsgAppStop        = "Application stopped gracefully"
	MsgCtxCancel      = "Context cancelled, shutting down UI"
	MsgSkippedCard    = "Skipping malformed vCard"
	MsgSkippedDate    = "Skipping invalid date format"
	MsgImportSuccess  = "vCard import successful"
	MsgFetchStart     = "Downloading address book"
	MsgFetchStatus    = "Address book server refused the request"
	MsgFetchOpen      = "Address book stream opened"
	MsgAppStarting    = "Starting application"
	MsgServerListen   = "HTTP server listening"
	MsgServerStop     = "Shutting down HTTP server..."
	MsgLocaleSkip     = "Skipping non-locale file"
	MsgLocaleBadName  = "Skipping malformed locale filename"
	MsgLocaleLoaded   = "Locale loaded successfully"
	MsgTransMissing   = "Missing translation key"
	MsgLogWarning     = "Warning: %s at %s: %v\n"
	MsgConfigLoaded   = "Configuration loaded"
	MsgKeyringMiss    = "Blob token not found in keyring"
	MsgStoreSelected  = "Profile store selected"
	MsgProfileCreated = "Profile created"
	MsgProfileUpdated = "Profile updated"
	MsgProfileMissing = "Profile not found"
	MsgStoreFallback  = "Persistent write failed, falling back to encoded profile"
	MsgBlobMalformed  = "Ignoring malformed stored profile"
	MsgRenderDone     = "Wallpaper rendered"
	MsgBadZone        = "Unknown time zone, falling back to UTC"
	MsgPanic          = "panic recovered"
	MsgRequest        = "HTTP request"
	MsgSettingsBad    = "Stored settings unreadable, using defaults"
	MsgSettingsSaved  = "Settings saved"
	MsgShareFallback  = "Profile API unavailable, using inline link"
	MsgShareReady     = "Share link generated"
	MsgMidnightTick   = "Midnight reached, advancing grid"
	MsgWorkerStart    = "Midnight worker started"
	MsgWorkerStop     = "Midnight worker stopping due to context cancellation"
	MsgWorkerResched  = "Midnight worker rescheduled"
	MsgWroteFile      = "Wallpaper written"
	MsgOpenEditor     = "Opening special date editor"
	MsgEditorFocus    = "Replacing open editor window"
	MsgSpecialSaved   = "Special date saved"
	MsgSpecialRemoved = "Special date removed"
	MsgImportFailed   = "vCard import failed"
	MsgPassFail       = "Password not found in keyring"
	MsgKeyringSave    = "Failed to save credentials to keyring"
	MsgClipboard      = "Share link copied to clipboard"
	MsgIconFailed     = "Failed to render application icon"
)

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyDaysLeft       = "days_left"
	TKeyWinTitle       = "win_title"
	TKeyLblTimeZone    = "lbl_timezone"
	TKeyLblSpecials    = "lbl_special_dates"
	TKeyLblNoSpecials  = "lbl_no_special_dates"
	TKeyLblEditor      = "lbl_editor"
	TKeyLblMonth       = "lbl_month"
	TKeyLblDay         = "lbl_day"
	TKeyLblColor       = "lbl_color"
	TKeyLblLabel       = "lbl_label"
	TKeyLblBirthday    = "lbl_birthday"
	TKeyLblPreset      = "lbl_preset"
	TKeyLblStats       = "lbl_stats"
	TKeyBtnAdd         = "btn_add"
	TKeyBtnSave        = "btn_save"
	TKeyBtnCancel      = "btn_cancel"
	TKeyBtnDelete      = "btn_delete"
	TKeyBtnGenerate    = "btn_generate"
	TKeyBtnCopy        = "btn_copy"
	TKeyBtnImport      = "btn_import"
	TKeyMsgCopied      = "msg_copied"
	TKeyMsgCopyFailed  = "msg_copy_failed"
	TKeyEvtBirthday    = "event_birthday"
	TKeyEvtSpecial     = "event_special"
	TKeyErrDayRange    = "err_day_range"
	TKeyLblFooter      = "lbl_footer"
	TKeyLblLanguage    = "lbl_language"
	TKeyLblSettings    = "lbl_settings"
	TKeyLblShare       = "lbl_share"
	TKeyLblURL         = "lbl_url"
	TKeyLblUser        = "lbl_user"
	TKeyLblPass        = "lbl_pass"
	TKeyBtnImportURL   = "btn_import_url"
	TKeyMsgImported    = "msg_imported"
	TKeyMsgInlineLink  = "msg_inline_link"
	TKeyErrImport      = "err_import"
	TKeyErrLabelLength = "err_label_length"
	TKeyErrInvalidDate = "err_invalid_date"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyStatus    = "status_code"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyPort      = "port"
	LogKeyAddr      = "addr"
	LogKeyBackend   = "backend"
	LogKeyProfileID = "profile_id"
	LogKeyTimeZone  = "time_zone"
	LogKeyCount     = "count"
	LogKeyFound     = "found"
	LogKeySizeBytes = "size_bytes"
	LogKeyValue     = "value"
	LogKeyDuration  = "duration_ms"
	LogKeyWidth     = "width"
	LogKeyHeight    = "height"
	LogKeyMethod    = "method"
	LogKeyPath      = "path"
	LogKeyRequestID = "request_id"
	LogKeyPanic     = "panic"
	LogKeyStack     = "stack"
	LogKeyNext      = "next"
	LogKeyFallback  = "fallback"
	LogKeyUser      = "user"
	LogKeyInline    = "inline"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompUI       = "ui"
	CompEngine   = "engine"
	CompServer   = "server"
	CompFetcher  = "fetcher"
	CompWorker   = "worker"
	CompMain     = "main"
	CompI18n     = "i18n"
	CompConfig   = "config"
	CompProfile  = "profile"
	CompRender   = "render"
	CompSettings = "settings"
	CompShare    = "share"
	CompLambda   = "lambda"
)

// -----------------------------------------------------------------------------
// UI Layout Constants
// -----------------------------------------------------------------------------

const (
	WindowWidth         = 720
	WindowHeight        = 900
	UITileSize          = 18
	UITileRadius        = 3
	LayoutColumnsDouble = 2
	LayoutColumnsTriple = 3
	CopyFeedbackDelay   = 2 * time.Second
	UIIconSize          = 256
	SwatchSize          = 14
)
