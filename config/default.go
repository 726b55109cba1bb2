// Package config provides centralized management for application settings, defaults, and the Viper-based configuration engine.
package config

import (
	"encoding/json"
	"strings"

	"github.com/redgrab-cli/redgrab/color"
	"github.com/redgrab-cli/redgrab/constant"
	"github.com/redgrab-cli/redgrab/key"
	"github.com/redgrab-cli/redgrab/style"
	"github.com/muesli/reflow/wordwrap"
	"github.com/samber/lo"
	"github.com/spf13/viper"
	"text/template"
)

// Field represents a configuration field definition.
type Field struct {
	Key         string
	Value       any
	Description string
}

// Pretty returns a colored string representation of the field for display.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env returns the environment variable name for this field.
func (f *Field) Env() string {
	env := strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
	prefix := strings.ToUpper(constant.Redgrab + "_")
	if strings.HasPrefix(env, prefix) {
		return env
	}
	return prefix + env
}

// MarshalJSON customizes JSON output to include current and default values.
func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
	})
}

// Default holds the map of all configuration fields.
var Default = make(map[string]Field)

// EnvExposed holds keys that are bound to environment variables.
var EnvExposed []string

func init() {
	// register validates and adds a new configuration field to the global registry.
	register := func(k string, v any, desc string) {
		if _, exists := Default[k]; exists {
			panic("Duplicate config key: " + k)
		}
		f := Field{Key: k, Value: v, Description: desc}
		Default[k] = f
		EnvExposed = append(EnvExposed, k)
	}

	register(key.DownloadsFolder, "Reddit Downloads/{subreddit}", "Destination folder pattern under the download root.\nSupports the {subreddit} token")
	register(key.DownloadsFilenamePattern, "{subreddit}_{timestamp}_{filename}", "Filename pattern.\nSupports {subreddit}, {timestamp} and {filename} tokens; unknown tokens are kept verbatim")
	register(key.DownloadsGalleryFolders, false, "Place multi-image galleries into their own indexed subfolder")
	register(key.OverlayImages, false, "Burn the post title into downloaded images (gif excluded)")
	register(key.OverlayVideos, false, "Burn the post title into downloaded videos")
	register(key.ScrapePostDelay, 1000, "Delay in milliseconds between successive post downloads during mass scraping")
	register(key.ScrapeRescanDelay, 2000, "Delay in milliseconds before re-scanning the feed after a batch")
	register(key.ScrapeMaxIdleScans, 2, "Consecutive empty scans after which mass scraping stops")
	register(key.MarkersPost, "shreddit-post", "Structural marker identifying a feed post container")
	register(key.MarkersVideoPlayer, "shreddit-player-2", "Structural marker identifying a video player inside a post")
	register(key.MarkersSingleImage, "shreddit-media-lightbox-listener", "Structural marker identifying a single-image container")
	register(key.MarkersGallery, "gallery-carousel", "Structural marker identifying a multi-image gallery carousel")
	register(key.MarkersEmbed, "shreddit-embed", "Structural marker identifying a third-party embed container")
	register(key.FFmpegBinary, "ffmpeg", "Path to the ffmpeg binary used for remuxing and video overlays")
	register(key.ServeAddress, "localhost:8347", "Listen address for the local bridge server")
	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(key.LogsJson, false, "Use json format for logs")
	register(key.CliColored, true, "Enable colored CLI output")
	register(key.CliVersionCheck, true, "Enable automatic version check")
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":  style.Faint,
	"bold":   style.Bold,
	"purple": style.Fg(color.Purple),
	"blue":   style.Fg(color.Blue),
	"value":  func(k string) any { return viper.Get(k) },
	"wrap":   func(s string) string { return wordwrap.String(s, 80) },
}).Parse(`{{ faint (wrap .Description) }}
{{ blue "Key:" }}     {{ purple .Key }}
{{ blue "Env:" }}     {{ .Env }}
{{ blue "Value:" }}   {{ value .Key }}
{{ blue "Default:" }} {{ .Value }}`))
