// Package suitefile loads the optional HCL file that describes how a run
// is presented: banner title and tool name, separator style, and which
// sinks receive the transcript.
//
//	suite {
//	  title     = "Nightly for ${upper(env.USER)}"
//	  tool      = "tidrun"
//	  separator = "="
//	  width     = 72
//	}
//
//	output {
//	  console = true
//	  color   = "auto"
//
//	  socketio {
//	    url       = "http://localhost:3000"
//	    namespace = "/ci"
//	  }
//	}
//
// Expressions can read environment variables through env.NAME and use the
// upper, lower, format, join and trimspace functions.
package suitefile

import (
	"context"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/creasty/defaults"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/tidrun/internal/ctxlog"
	"github.com/specialistvlad/tidrun/internal/sink"
)

// Settings is the decoded, defaulted content of a suite file.
type Settings struct {
	Title     string `default:"tidrun"`
	Tool      string `default:"tidrun"`
	Separator string `default:"-"`
	Width     int    `default:"60"`
	Console   bool   `default:"true"`
	Color     string `default:"auto"`
	SocketIO  *SocketIO
}

// SocketIO configures the socket.io transcript sink.
type SocketIO struct {
	URL                string
	Namespace          string `default:"/"`
	Event              string `default:"tidrun:line"`
	Retries            int    `default:"3"`
	InsecureSkipVerify bool
}

// Default returns the settings used when no suite file is given.
func Default() *Settings {
	s := &Settings{}
	if err := defaults.Set(s); err != nil {
		panic(fmt.Sprintf("suitefile: invalid default tags: %v", err))
	}
	return s
}

// SeparatorRune returns the separator character.
func (s *Settings) SeparatorRune() rune {
	r, _ := utf8.DecodeRuneInString(s.Separator)
	return r
}

type fileRoot struct {
	Suite  *suiteBlock  `hcl:"suite,block"`
	Output *outputBlock `hcl:"output,block"`
}

type suiteBlock struct {
	Title     *string `hcl:"title,optional"`
	Tool      *string `hcl:"tool,optional"`
	Separator *string `hcl:"separator,optional"`
	Width     *int    `hcl:"width,optional"`
}

type outputBlock struct {
	Console  *bool          `hcl:"console,optional"`
	Color    *string        `hcl:"color,optional"`
	SocketIO *socketIOBlock `hcl:"socketio,block"`
}

type socketIOBlock struct {
	URL                string  `hcl:"url"`
	Namespace          *string `hcl:"namespace,optional"`
	Event              *string `hcl:"event,optional"`
	Retries            *int    `hcl:"retries,optional"`
	InsecureSkipVerify *bool   `hcl:"insecure_skip_verify,optional"`
}

// Load reads and decodes the suite file at path using the process
// environment.
func Load(ctx context.Context, path string) (*Settings, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read suite file: %w", err)
	}
	return Parse(ctx, src, path, environ())
}

// Parse decodes suite file source. filename is only used in diagnostics.
func Parse(ctx context.Context, src []byte, filename string, env map[string]string) (*Settings, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Parsing suite file.", "file", filename)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse suite file %s: %w", filename, diags)
	}

	var root fileRoot
	diags = gohcl.DecodeBody(file.Body, newEvalContext(env), &root)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode suite file %s: %w", filename, diags)
	}

	s := Default()
	s.merge(&root)
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid suite file %s: %w", filename, err)
	}

	logger.Debug("Suite file loaded.", "file", filename, "title", s.Title, "socketio", s.SocketIO != nil)
	return s, nil
}

func (s *Settings) merge(root *fileRoot) {
	if b := root.Suite; b != nil {
		setIf(&s.Title, b.Title)
		setIf(&s.Tool, b.Tool)
		setIf(&s.Separator, b.Separator)
		setIf(&s.Width, b.Width)
	}
	if b := root.Output; b != nil {
		setIf(&s.Console, b.Console)
		setIf(&s.Color, b.Color)
		if sb := b.SocketIO; sb != nil {
			sio := &SocketIO{}
			_ = defaults.Set(sio)
			sio.URL = sb.URL
			setIf(&sio.Namespace, sb.Namespace)
			setIf(&sio.Event, sb.Event)
			setIf(&sio.Retries, sb.Retries)
			setIf(&sio.InsecureSkipVerify, sb.InsecureSkipVerify)
			s.SocketIO = sio
		}
	}
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// Validate checks value ranges that HCL's type system cannot express.
func (s *Settings) Validate() error {
	if utf8.RuneCountInString(s.Separator) != 1 {
		return fmt.Errorf("separator must be exactly one character, got %q", s.Separator)
	}
	if s.Width < 1 || s.Width > 400 {
		return fmt.Errorf("width must be between 1 and 400, got %d", s.Width)
	}
	if _, err := sink.ParseColorMode(s.Color); err != nil {
		return err
	}
	if s.SocketIO != nil {
		if s.SocketIO.URL == "" {
			return fmt.Errorf("socketio url must not be empty")
		}
		if s.SocketIO.Retries < 0 {
			return fmt.Errorf("socketio retries must not be negative, got %d", s.SocketIO.Retries)
		}
	}
	return nil
}
