package log

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"go.jacobcolvin.com/ulog"
)

var (
	// ErrInvalidConfig indicates a configuration that failed validation.
	ErrInvalidConfig = errors.New("invalid log configuration")
	// ErrUnknownConfigFormat indicates a config file extension that is not
	// one of .yaml, .yml, .json, or .toml.
	ErrUnknownConfigFormat = errors.New("unknown config file format")
)

// Flags holds CLI flag names for log configuration, allowing callers to
// customize flag names while keeping sensible defaults via [NewConfig].
type Flags struct {
	Level         string
	Format        string
	Quiet         string
	Subscribers   string
	MessageLength string
	Source        string
	File          string
}

// NewConfig creates a new [Config] embedding these flag names.
func (f Flags) NewConfig() *Config {
	return &Config{
		Flags: f,
	}
}

// Config holds log configuration from CLI flags or a config file.
//
// Create instances with [NewConfig] and register CLI flags with
// [Config.RegisterFlags]. Use [Config.NewLogger] to build a [ulog.Logger]
// with a console subscriber attached.
type Config struct {
	Flags Flags `json:"-" toml:"-" yaml:"-"`
	File  string `json:"-" toml:"-" yaml:"-"`

	Level         string `json:"level,omitempty"          jsonschema:"minimum level delivered to the console subscriber" toml:"level,omitempty"          validate:"omitempty,level"     yaml:"level,omitempty"`
	Format        string `json:"format,omitempty"         jsonschema:"console output format"                            toml:"format,omitempty"         validate:"omitempty,format"    yaml:"format,omitempty"`
	Subscribers   int    `json:"subscribers,omitempty"    jsonschema:"number of subscriber slots; 0 uses the default"   toml:"subscribers,omitempty"    validate:"gte=0,lte=1024"      yaml:"subscribers,omitempty"`
	MessageLength int    `json:"message_length,omitempty" jsonschema:"message buffer size in bytes; 0 uses the default" toml:"message_length,omitempty" validate:"gte=0,lte=1048576"   yaml:"message_length,omitempty"`
	Quiet         bool   `json:"quiet,omitempty"          jsonschema:"suppress all log output"                          toml:"quiet,omitempty"          yaml:"quiet,omitempty"`
	Source        bool   `json:"source,omitempty"         jsonschema:"attach caller file and line to messages"          toml:"source,omitempty"         yaml:"source,omitempty"`
}

// NewConfig returns a new [Config] with zero-value fields.
// Use [Config.RegisterFlags] to add CLI flags, or set values directly.
func NewConfig() *Config {
	f := Flags{
		Level:         "log-level",
		Format:        "log-format",
		Quiet:         "log-quiet",
		Subscribers:   "log-subscribers",
		MessageLength: "log-message-length",
		Source:        "log-source",
		File:          "log-config",
	}

	return f.NewConfig()
}

// RegisterFlags adds logging flags to the given [*pflag.FlagSet].
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringVar(&c.Level, c.Flags.Level, "info",
		fmt.Sprintf("log level, one of: %s", ulog.AllLevelStrings()))
	flags.StringVar(&c.Format, c.Flags.Format, "text",
		fmt.Sprintf("log format, one of: %s", GetAllFormatStrings()))
	flags.BoolVar(&c.Quiet, c.Flags.Quiet, false,
		"suppress all log output")
	flags.IntVar(&c.Subscribers, c.Flags.Subscribers, ulog.DefaultCapacity,
		"number of subscriber slots")
	flags.IntVar(&c.MessageLength, c.Flags.MessageLength, ulog.DefaultMessageLength,
		"message buffer size in bytes; longer messages are truncated")
	flags.BoolVar(&c.Source, c.Flags.Source, true,
		"attach caller file and line to messages")
	flags.StringVar(&c.File, c.Flags.File, "",
		"path to a YAML, JSON, or TOML log config file")
}

// RegisterCompletions registers shell completions for log flags on cmd.
func (c *Config) RegisterCompletions(cmd *cobra.Command) error {
	err := cmd.RegisterFlagCompletionFunc(c.Flags.Level,
		cobra.FixedCompletions(ulog.AllLevelStrings(), cobra.ShellCompDirectiveNoFileComp))
	if err != nil {
		return fmt.Errorf("registering %s completion: %w", c.Flags.Level, err)
	}

	err = cmd.RegisterFlagCompletionFunc(c.Flags.Format,
		cobra.FixedCompletions(GetAllFormatStrings(), cobra.ShellCompDirectiveNoFileComp))
	if err != nil {
		return fmt.Errorf("registering %s completion: %w", c.Flags.Format, err)
	}

	noFileComp := func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	for _, flag := range []string{c.Flags.Subscribers, c.Flags.MessageLength} {
		regErr := cmd.RegisterFlagCompletionFunc(flag, noFileComp)
		if regErr != nil {
			return fmt.Errorf("registering %s completion: %w", flag, regErr)
		}
	}

	err = cmd.RegisterFlagCompletionFunc(c.Flags.File,
		cobra.FixedCompletions([]string{"yaml", "yml", "json", "toml"}, cobra.ShellCompDirectiveFilterFileExt))
	if err != nil {
		return fmt.Errorf("registering %s completion: %w", c.Flags.File, err)
	}

	return nil
}

// Load reads the config file named by [Config.File], if any, then re-applies
// every flag in flags that was set explicitly on the command line so flags
// take precedence over the file. A nil flags skips the second step.
func (c *Config) Load(flags *pflag.FlagSet) error {
	if c.File == "" {
		return nil
	}

	// Flag values are bound to c's fields, so capture them before the file
	// overwrites them.
	explicit := map[string]string{}

	if flags != nil {
		owned := []string{
			c.Flags.Level, c.Flags.Format, c.Flags.Quiet, c.Flags.Subscribers,
			c.Flags.MessageLength, c.Flags.Source,
		}

		flags.Visit(func(f *pflag.Flag) {
			if slices.Contains(owned, f.Name) {
				explicit[f.Name] = f.Value.String()
			}
		})
	}

	err := c.LoadFile(c.File)
	if err != nil {
		return err
	}

	for name, value := range explicit {
		err := flags.Set(name, value)
		if err != nil {
			return fmt.Errorf("re-applying --%s: %w", name, err)
		}
	}

	return nil
}

// LoadFile decodes the file at path into c, overwriting only the keys the
// file sets. The decoder is chosen by extension.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // Config path from CLI flag is expected.
	if err != nil {
		return fmt.Errorf("reading log config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		err = yaml.Unmarshal(data, c)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}

	case ".toml":
		err = toml.Unmarshal(data, c)
		if err != nil {
			var derr *toml.DecodeError
			if errors.As(err, &derr) {
				row, col := derr.Position()

				return fmt.Errorf("parsing %s at line %d, column %d: %w", path, row, col, err)
			}

			return fmt.Errorf("parsing %s: %w", path, err)
		}

	default:
		return fmt.Errorf("%w: %s", ErrUnknownConfigFormat, path)
	}

	return nil
}

// Validate checks field ranges and that Level and Format name known values.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	errs := make([]error, 0, len(verrs))
	for _, e := range verrs {
		errs = append(errs, fmt.Errorf("%w: %s: %s", ErrInvalidConfig, e.Field(), validationMessage(e)))
	}

	return errors.Join(errs...)
}

// NewLogger validates c and builds a [ulog.Logger] from it, subscribing a
// [Subscriber] that writes to w in the configured format at the configured
// level. Empty Level and Format default to info and text.
func (c *Config) NewLogger(w io.Writer) (*ulog.Logger, error) {
	err := c.Validate()
	if err != nil {
		return nil, err
	}

	level := c.Level
	if level == "" {
		level = "info"
	}

	format := c.Format
	if format == "" {
		format = string(FormatText)
	}

	lvl, err := ulog.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	handler, err := NewHandlerFromStrings(w, level, format)
	if err != nil {
		return nil, err
	}

	opts := []ulog.Option{ulog.WithSource(c.Source)}
	if c.Subscribers > 0 {
		opts = append(opts, ulog.WithCapacity(c.Subscribers))
	}

	if c.MessageLength > 0 {
		opts = append(opts, ulog.WithMessageLength(c.MessageLength))
	}

	l := ulog.New(opts...)
	l.SetQuiet(c.Quiet)

	err = l.Subscribe(NewSubscriber(handler), lvl)
	if err != nil {
		return nil, fmt.Errorf("subscribing console: %w", err)
	}

	return l, nil
}

// Schema returns the JSON Schema describing the config file format.
func Schema() (*jsonschema.Schema, error) {
	schema, err := jsonschema.For[Config](nil)
	if err != nil {
		return nil, fmt.Errorf("generating config schema: %w", err)
	}

	schema.Title = "ulog configuration"

	return schema, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	must(v.RegisterValidation("level", func(fl validator.FieldLevel) bool {
		_, err := ulog.ParseLevel(fl.Field().String())

		return err == nil
	}))

	must(v.RegisterValidation("format", func(fl validator.FieldLevel) bool {
		_, err := ParseFormat(fl.Field().String())

		return err == nil
	}))

	return v
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "level":
		return fmt.Sprintf("unknown level %q, one of: %s", e.Value(), ulog.AllLevelStrings())
	case "format":
		return fmt.Sprintf("unknown format %q, one of: %s", e.Value(), GetAllFormatStrings())
	case "gte":
		return "must be at least " + e.Param()
	case "lte":
		return "must be at most " + e.Param()
	}

	return "failed " + e.Tag()
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
