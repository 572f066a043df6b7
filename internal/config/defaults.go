package config

const (
	defaultRipDir                 = "/srv/ripped-music/ripping"
	defaultMusicDir               = "/srv/ripped-music/flac"
	defaultLogDir                 = "/var/log/cdrip"
	defaultRipperBinary           = "abcde"
	defaultDevice                 = "sr0"
	defaultTelegramRequestTimeout = 15
	defaultTelegramParseMode      = "Markdown"
	defaultUploadUnitTemplate     = "copyparty-upload@%s.service"
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			RipDir:   defaultRipDir,
			MusicDir: defaultMusicDir,
			LogDir:   defaultLogDir,
		},
		Ripper: Ripper{
			Binary: defaultRipperBinary,
			Device: defaultDevice,
		},
		Telegram: Telegram{
			RequestTimeout: defaultTelegramRequestTimeout,
			ParseMode:      defaultTelegramParseMode,
		},
		Upload: Upload{
			UnitTemplate: defaultUploadUnitTemplate,
		},
		History: History{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
