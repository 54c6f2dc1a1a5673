package knowledge

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Loader errors
var (
	ErrKnowledgeNotFound = errors.New("knowledge base not found")
	ErrInvalidKnowledge  = errors.New("invalid knowledge base")
)

// Loader handles loading knowledge bases from the filesystem
type Loader struct {
	basePath string
}

// NewLoader creates a new loader. basePath is either a single knowledge
// file or a directory of them.
func NewLoader(basePath string) *Loader {
	return &Loader{basePath: basePath}
}

// BasePath returns the path the loader reads from
func (l *Loader) BasePath() string {
	return l.basePath
}

// LoadKnowledge loads the knowledge base at basePath. A directory is walked
// in lexical order and its files merged; a keyword defined again in a later
// file replaces the earlier reply.
func (l *Loader) LoadKnowledge() (*KnowledgeBase, error) {
	info, err := os.Stat(l.basePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrKnowledgeNotFound, l.basePath)
		}
		return nil, fmt.Errorf("failed to stat knowledge base: %w", err)
	}

	if !info.IsDir() {
		return l.LoadFile(l.basePath)
	}

	kb := NewKnowledgeBase()
	err = filepath.Walk(l.basePath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() || !isKnowledgeFile(path) {
			return nil
		}

		fileKB, err := l.LoadFile(path)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}

		for _, e := range fileKB.entries {
			kb.Set(e.Keyword, e.Reply)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk knowledge directory: %w", err)
	}

	return kb, nil
}

// LoadFile loads a single JSON or YAML knowledge file. The document must be
// a mapping of strings to strings; keys are trimmed and lowercased.
func (l *Loader) LoadFile(path string) (*KnowledgeBase, error) {
	// Validate path to prevent directory traversal attacks
	if err := l.validatePath(path); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrKnowledgeNotFound, path)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var entries []Entry
	if isYAMLFile(path) {
		entries, err = decodeYAMLKnowledge(data)
	} else {
		entries, err = decodeJSONKnowledge(data)
	}
	if err != nil {
		return nil, err
	}

	kb := NewKnowledgeBase()
	for _, e := range entries {
		kb.Set(NormalizeQuestion(e.Keyword), e.Reply)
	}
	return kb, nil
}

// decodeJSONKnowledge walks the top-level JSON object token by token so
// that document order is preserved.
func decodeJSONKnowledge(data []byte) ([]Entry, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: not valid JSON: %v", ErrInvalidKnowledge, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("%w: must be a JSON object mapping keywords to replies", ErrInvalidKnowledge)
	}

	var entries []Entry
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: not valid JSON: %v", ErrInvalidKnowledge, err)
		}
		key, _ := keyTok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("%w: not valid JSON: %v", ErrInvalidKnowledge, err)
		}
		var reply string
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 || raw[0] != '"' || json.Unmarshal(raw, &reply) != nil {
			return nil, fmt.Errorf("%w: all entries must be string-to-string mappings (key %q)", ErrInvalidKnowledge, key)
		}

		entries = append(entries, Entry{Keyword: key, Reply: reply})
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: not valid JSON: %v", ErrInvalidKnowledge, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: unexpected data after JSON object", ErrInvalidKnowledge)
	}

	return entries, nil
}

// decodeYAMLKnowledge reads a YAML mapping through yaml.Node to keep key
// order and reject non-string scalars.
func decodeYAMLKnowledge(data []byte) ([]Entry, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: not valid YAML: %v", ErrInvalidKnowledge, err)
	}

	root := resolveAlias(&doc)
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = resolveAlias(root.Content[0])
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: must be a mapping of keywords to replies", ErrInvalidKnowledge)
	}

	entries := make([]Entry, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		keyNode := resolveAlias(root.Content[i])
		valueNode := resolveAlias(root.Content[i+1])
		if !isStringScalar(keyNode) || !isStringScalar(valueNode) {
			return nil, fmt.Errorf("%w: all entries must be string-to-string mappings (line %d)",
				ErrInvalidKnowledge, keyNode.Line)
		}
		entries = append(entries, Entry{Keyword: keyNode.Value, Reply: valueNode.Value})
	}

	return entries, nil
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func isStringScalar(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!str"
}

func isKnowledgeFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".json" || ext == ".yaml" || ext == ".yml"
}

func isYAMLFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// validatePath ensures the given path is within the loader's basePath
// and prevents directory traversal attacks
func (l *Loader) validatePath(path string) error {
	// Clean and resolve the paths to absolute form
	cleanPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	cleanBase, err := filepath.Abs(filepath.Clean(l.basePath))
	if err != nil {
		return fmt.Errorf("failed to resolve base path: %w", err)
	}

	// Follow symlinks so a link inside basePath cannot point outside it
	if resolved, err := filepath.EvalSymlinks(cleanPath); err == nil {
		cleanPath = resolved
	}
	if resolved, err := filepath.EvalSymlinks(cleanBase); err == nil {
		cleanBase = resolved
	}

	if cleanPath == cleanBase {
		return nil
	}

	relPath, err := filepath.Rel(cleanBase, cleanPath)
	if err != nil {
		return fmt.Errorf("failed to compute relative path: %w", err)
	}

	// If the relative path starts with "..", it's outside the base path
	if strings.HasPrefix(relPath, "..") || filepath.IsAbs(relPath) {
		return fmt.Errorf("path traversal detected: %s is outside base path %s", path, l.basePath)
	}

	return nil
}
