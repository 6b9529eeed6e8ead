// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package patch

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"golang.org/x/xerrors"
	"gopkg.in/yaml.v3"
)

// A Kind is the type of a structured logging field.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindInt64
	KindBool
	KindDuration
	KindError
	KindFloat64
)

var kindNames = [...]string{
	KindString:   "String",
	KindInt:      "Int",
	KindInt64:    "Int64",
	KindBool:     "Bool",
	KindDuration: "Duration",
	KindError:    "Error",
	KindFloat64:  "Float64",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind returns the Kind with the given name.
// Names are the field constructor names: String, Int, Int64, Bool, Duration, Error, Float64.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown field kind %q", name)
}

func (k Kind) MarshalYAML() (interface{}, error) {
	return k.String(), nil
}

func (k *Kind) UnmarshalYAML(value *yaml.Node) error {
	kind, err := ParseKind(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %v", value.Line, err)
	}
	*k = kind
	return nil
}

// FieldTypes maps a logging key to the kind of field built for it.
type FieldTypes map[string]Kind

// A Pass is an independently selectable group of catalog rules.
type Pass string

const (
	// PassLegacy removes the rate limiter, audit logger and local
	// cache plumbing: erase rules and block rules.
	PassLegacy Pass = "legacy"

	// PassCalls rewrites loose key/value logging calls into typed fields.
	PassCalls Pass = "calls"

	// PassImports runs goimports over the result.
	PassImports Pass = "imports"
)

// DefaultPasses is the pass selection used when none is given.
var DefaultPasses = []Pass{PassLegacy, PassCalls}

// ParsePass returns the pass with the given name.
func ParsePass(name string) (Pass, error) {
	switch p := Pass(strings.TrimSpace(name)); p {
	case PassLegacy, PassCalls, PassImports:
		return p, nil
	}
	return "", fmt.Errorf("unknown pass %q (want %s, %s or %s)", name, PassLegacy, PassCalls, PassImports)
}

// A RuleKind says which textual construct a Rule removes or rewrites.
type RuleKind string

const (
	RuleImport    RuleKind = "import"    // import line by path
	RuleField     RuleKind = "field"     // struct field by name and type
	RuleInit      RuleKind = "init"      // composite literal entry by name and constructor
	RuleStatement RuleKind = "statement" // method call statement by receiver and call prefix
	RuleLine      RuleKind = "line"      // any line matching a regexp
	RuleWindow    RuleKind = "window"    // regexp replacement over the whole text
)

// A Rule is one inline rewrite. Which fields apply depends on Kind.
type Rule struct {
	Name string   `yaml:"name"`
	Kind RuleKind `yaml:"kind"`

	// import
	Path     string `yaml:"path,omitempty"`
	IfUnused bool   `yaml:"if_unused,omitempty"`

	// field, init
	Field       string `yaml:"field,omitempty"`
	Type        string `yaml:"type,omitempty"`
	Constructor string `yaml:"constructor,omitempty"`

	// statement
	Receivers []string `yaml:"receivers,omitempty"`
	Call      string   `yaml:"call,omitempty"`
	Contains  string   `yaml:"contains,omitempty"`

	// line, window
	Pattern string `yaml:"pattern,omitempty"`
	Span    bool   `yaml:"span,omitempty"`
	Replace string `yaml:"replace,omitempty"`
}

// A BlockRule identifies the opening line of a block to delete.
// A line opens the block if it contains any of Opens or matches Pattern.
type BlockRule struct {
	Name    string   `yaml:"name"`
	Opens   []string `yaml:"opens,omitempty"`
	Pattern string   `yaml:"pattern,omitempty"`
}

// A CallRule identifies logging calls to normalize:
// receiver.method( for any listed receiver and method.
type CallRule struct {
	Receivers []string `yaml:"receivers"`
	Methods   []string `yaml:"methods"`
}

// A Catalog is the complete, read-only rule set of a run.
type Catalog struct {
	Version int `yaml:"version"`

	// Worklist is the file list used when a run names no files.
	Worklist []string `yaml:"worklist,omitempty"`

	Erase  []Rule      `yaml:"erase,omitempty"`
	Blocks []BlockRule `yaml:"blocks,omitempty"`
	Calls  CallRule    `yaml:"calls"`
	Fields FieldTypes  `yaml:"fields,omitempty"`

	// FieldPackage is the package name used in field constructors
	// (zap in zap.String), and FieldImport its import path.
	FieldPackage string `yaml:"field_package"`
	FieldImport  string `yaml:"field_import"`
}

// LoadCatalog reads a YAML catalog from file.
func LoadCatalog(file string) (*Catalog, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	c, err := ParseCatalog(data)
	if err != nil {
		return nil, xerrors.Errorf("%s: %w", file, err)
	}
	return c, nil
}

// ParseCatalog parses and validates a YAML catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	c := new(Catalog)
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Marshal returns c in YAML form.
func (c *Catalog) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Validate checks that every rule has what its kind needs
// and that every pattern compiles.
func (c *Catalog) Validate() error {
	var errs ErrorList
	for i, r := range c.Erase {
		if err := r.validate(); err != nil {
			errs.Add(fmt.Errorf("erase[%d] %s: %v", i, r.Name, err))
		}
	}
	for i, b := range c.Blocks {
		if len(b.Opens) == 0 && b.Pattern == "" {
			errs.Add(fmt.Errorf("blocks[%d] %s: needs opens or pattern", i, b.Name))
		}
		if b.Pattern != "" {
			if _, err := regexp.Compile(b.Pattern); err != nil {
				errs.Add(fmt.Errorf("blocks[%d] %s: %v", i, b.Name, err))
			}
		}
	}
	if len(c.Calls.Receivers) > 0 && len(c.Calls.Methods) == 0 {
		errs.Add(fmt.Errorf("calls: receivers without methods"))
	}
	if len(c.Calls.Receivers) > 0 && c.FieldPackage == "" {
		errs.Add(fmt.Errorf("calls: field_package not set"))
	}
	return errs.Err()
}

func (r *Rule) validate() error {
	need := func(what, v string) error {
		if v == "" {
			return fmt.Errorf("%s rule needs %s", r.Kind, what)
		}
		return nil
	}
	switch r.Kind {
	case RuleImport:
		return need("path", r.Path)
	case RuleField:
		if err := need("field", r.Field); err != nil {
			return err
		}
		return need("type", r.Type)
	case RuleInit:
		if err := need("field", r.Field); err != nil {
			return err
		}
		return need("constructor", r.Constructor)
	case RuleStatement:
		return need("call", r.Call)
	case RuleLine, RuleWindow:
		if err := need("pattern", r.Pattern); err != nil {
			return err
		}
		_, err := regexp.Compile(r.Pattern)
		return err
	}
	return fmt.Errorf("unknown rule kind %q", r.Kind)
}

// DefaultCatalog returns the built-in catalog: it strips the
// security and optimization packages (rate limiter, audit logger,
// local cache) out of plugin handlers and moves logger calls onto
// typed zap fields.
func DefaultCatalog() *Catalog {
	recv := []string{"h", "p"}
	return &Catalog{
		Version: 1,
		Worklist: []string{
			"pkg/plugins/api/gateway.go",
			"pkg/plugins/api/handler.go",
			"pkg/plugins/auth/handler.go",
			"pkg/plugins/cache/handler.go",
			"pkg/plugins/metadata/handler.go",
			"pkg/plugins/monitor/handler.go",
			"pkg/plugins/streaming/handler.go",
			"pkg/plugins/transcoder/handler.go",
			"pkg/plugins/upload/handler.go",
			"pkg/plugins/worker/handler.go",
		},
		Erase: []Rule{
			{Name: "security-import", Kind: RuleImport, Path: "./pkg/security"},
			{Name: "optimization-import", Kind: RuleImport, Path: "./pkg/optimization"},

			{Name: "rate-limiter-field", Kind: RuleField, Field: "rateLimiter", Type: "*security.RateLimiter"},
			{Name: "audit-logger-field", Kind: RuleField, Field: "auditLogger", Type: "*security.AuditLogger"},
			{Name: "cache-field", Kind: RuleField, Field: "cache", Type: "*optimization.LocalCache"},
			{Name: "local-cache-field", Kind: RuleField, Field: "localCache", Type: "*optimization.LocalCache"},

			{Name: "rate-limiter-init", Kind: RuleInit, Field: "rateLimiter", Constructor: "security.NewRateLimiter"},
			{Name: "audit-logger-init", Kind: RuleInit, Field: "auditLogger", Constructor: "security.NewAuditLogger"},
			{Name: "cache-init", Kind: RuleInit, Field: "cache", Constructor: "optimization.NewLocalCache"},
			{Name: "local-cache-init", Kind: RuleInit, Field: "localCache", Constructor: "optimization.NewLocalCache"},

			{Name: "field-assign", Kind: RuleLine, Span: true,
				Pattern: `^\s*[hp]\.(?:rateLimiter|auditLogger|cache|localCache)\s*=[^=]`},

			{Name: "start-time", Kind: RuleLine, Pattern: `^\s*startTime\s*:=\s*time\.Now\(\)\s*$`},
			{Name: "client-ip", Kind: RuleLine, Pattern: `^\s*clientIP\s*:=\s*r\.RemoteAddr\s*$`},
			{Name: "guard-comments", Kind: RuleLine,
				Pattern: `^\s*// (?:Check rate limit|Check cache|Cache result|Get client IP for rate limiting)\s*$`},

			{Name: "audit-events", Kind: RuleStatement, Receivers: recv, Call: "auditLogger.Log"},
			{Name: "request-timer", Kind: RuleStatement, Receivers: recv,
				Call: "metricsCollector.RecordTimer(", Contains: "time.Since(startTime)"},
			{Name: "cache-stop", Kind: RuleStatement, Receivers: recv, Call: "cache.Stop()"},
			{Name: "cache-set", Kind: RuleStatement, Receivers: recv, Call: "cache.Set("},

			{Name: "time-import", Kind: RuleImport, Path: "time", IfUnused: true},
		},
		Blocks: []BlockRule{
			{Name: "rate-limit-guard", Opens: []string{"if !h.rateLimiter.Allow(", "if !p.rateLimiter.Allow("}},
			{Name: "cache-hit-guard", Opens: []string{"if cached, ok := h.cache.Get(", "if cached, ok := p.cache.Get("}},
			{Name: "cache-stop-guard", Pattern: `^\s*if [hp]\.(?:cache|localCache) != nil \{`},
		},
		Calls: CallRule{
			Receivers: []string{"logger"},
			Methods:   []string{"Debug", "Info", "Warn", "Error", "DPanic", "Panic", "Fatal"},
		},
		Fields:       defaultFields(),
		FieldPackage: "zap",
		FieldImport:  "go.uber.org/zap",
	}
}

func defaultFields() FieldTypes {
	f := FieldTypes{
		"error": KindError,

		"port":           KindInt,
		"count":          KindInt,
		"size":           KindInt,
		"nonce":          KindInt,
		"failures":       KindInt,
		"length":         KindInt,
		"message_length": KindInt,

		"id":           KindInt64,
		"user_id":      KindInt64,
		"content_id":   KindInt64,
		"block_number": KindInt64,

		"duration":        KindDuration,
		"elapsed":         KindDuration,
		"update_interval": KindDuration,

		"success":     KindBool,
		"is_owner":    KindBool,
		"has_nft":     KindBool,
		"is_contract": KindBool,
	}
	for _, k := range strings.Fields(`
		address chain_id contract cid filename name service_id service_name
		path method from to key type subject event_type event_id tx_hash
		function mode url version rpc_url host challenge_id from_chain
		alert_id signal owner token_id asset amount event from_block
		to_block value gas_limit expected gas_price_wei gas_price gas balance`) {
		f[k] = KindString
	}
	return f
}
