package config

const (
	defaultWIPRoot             = "./wip"
	defaultOutRoot             = "./out"
	defaultDevice              = "/dev/sr0"
	defaultMakeMKVSettingsPath = "~/.MakeMKV/settings.conf"
	defaultMakeMKVKeyURL       = "https://forum.makemkv.com/forum/viewtopic.php?f=5&t=1053"
	defaultKeyTimeoutSeconds   = 30
	defaultStableWindowSeconds = 10
	defaultPollSeconds         = 5
	defaultLogLevel            = "info"
)

// DefaultFFmpegArgs is the argument list inserted between the input and
// output paths when transcode.ffmpeg_args is unset: re-encode video, copy
// every audio and subtitle stream.
func DefaultFFmpegArgs() []string {
	return []string{"-c:v", "libx264", "-crf", "18", "-map", "0", "-c:a", "copy", "-c:s", "copy"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WIPRoot: defaultWIPRoot,
			OutRoot: defaultOutRoot,
		},
		Drive: Drive{
			Device: defaultDevice,
		},
		MakeMKV: MakeMKV{
			SettingsPath: defaultMakeMKVSettingsPath,
			KeyURL:       defaultMakeMKVKeyURL,
			KeyTimeout:   defaultKeyTimeoutSeconds,
		},
		Transcode: Transcode{
			FFmpegArgs:   DefaultFFmpegArgs(),
			StableWindow: defaultStableWindowSeconds,
		},
		Workflow: Workflow{
			RipPollInterval:       defaultPollSeconds,
			TranscodePollInterval: defaultPollSeconds,
		},
		Logging: Logging{
			Level: defaultLogLevel,
		},
	}
}
