package knowledge

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FAQFieldOptions names the record fields holding questions and answers
type FAQFieldOptions struct {
	QuestionField string
	AnswerField   string
}

// DefaultFAQFields reads "question" and "answer" fields
var DefaultFAQFields = FAQFieldOptions{QuestionField: "question", AnswerField: "answer"}

// LoadFAQPairs reads a JSON or YAML list of records and returns the
// (question, answer) pairs in file order. Records whose question or answer
// is blank after coercion are skipped.
func LoadFAQPairs(path string, fields FAQFieldOptions) ([]FAQPair, error) {
	if fields.QuestionField == "" {
		fields.QuestionField = DefaultFAQFields.QuestionField
	}
	if fields.AnswerField == "" {
		fields.AnswerField = DefaultFAQFields.AnswerField
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrKnowledgeNotFound, path)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var records []map[string]interface{}
	if isYAMLFile(path) {
		err = yaml.Unmarshal(data, &records)
	} else {
		err = json.Unmarshal(data, &records)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: FAQ file must be a list of records: %v", ErrInvalidKnowledge, err)
	}

	pairs := make([]FAQPair, 0, len(records))
	for _, record := range records {
		question, ok := coerceToString(record[fields.QuestionField])
		if !ok {
			continue
		}
		answer, ok := coerceToString(record[fields.AnswerField])
		if !ok {
			continue
		}
		pairs = append(pairs, FAQPair{Question: question, Answer: answer})
	}

	return pairs, nil
}

// coerceToString flattens a record value into a trimmed string. Lists are
// joined with spaces; other types are dropped.
func coerceToString(value interface{}) (string, bool) {
	switch v := value.(type) {
	case string:
		s := strings.TrimSpace(v)
		return s, s != ""
	case []interface{}:
		parts := make([]string, 0, len(v))
		for _, part := range v {
			if part == nil || part == "" {
				continue
			}
			parts = append(parts, strings.TrimSpace(fmt.Sprint(part)))
		}
		s := strings.Join(parts, " ")
		return s, s != ""
	default:
		return "", false
	}
}

// PersistFAQPairs writes pairs as a knowledge base JSON object, keyed by the
// normalized question, creating parent directories as needed. A repeated
// question keeps its first position and its last answer.
func PersistFAQPairs(pairs []FAQPair, path string) error {
	if path == "" {
		return errors.New("knowledge path must be provided")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("unable to persist knowledge to %s: %w", path, err)
	}

	kb := NewKnowledgeBase()
	for _, p := range pairs {
		kb.Set(NormalizeQuestion(p.Question), p.Answer)
	}

	data, err := MarshalKnowledge(kb)
	if err != nil {
		return err
	}

	// #nosec G306 -- knowledge files are not secret
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("unable to persist knowledge to %s: %w", path, err)
	}
	return nil
}

// MarshalKnowledge encodes kb as an indented JSON object in iteration
// order. Non-ASCII text is written as is.
func MarshalKnowledge(kb *KnowledgeBase) ([]byte, error) {
	var buf bytes.Buffer
	if kb.Len() == 0 {
		buf.WriteString("{}\n")
		return buf.Bytes(), nil
	}

	buf.WriteString("{\n")
	for i, e := range kb.Entries() {
		key, err := marshalString(e.Keyword)
		if err != nil {
			return nil, err
		}
		value, err := marshalString(e.Reply)
		if err != nil {
			return nil, err
		}

		buf.WriteString("  ")
		buf.Write(key)
		buf.WriteString(": ")
		buf.Write(value)
		if i < kb.Len()-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

func marshalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
