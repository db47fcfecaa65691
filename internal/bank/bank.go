// Package bank holds the static, subject-keyed question sets used when
// remote generation is unavailable.
package bank

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/example/adaptedmind/pkg/models"
)

//go:embed default_bank.json
var defaultBankJSON []byte

// Bank is an immutable subject -> questions lookup table. It is built once at
// startup and only ever handed out as copies.
type Bank struct {
	subjects       map[string][]models.Question // keyed by canonical subject id
	names          map[string]string            // canonical id -> display name
	defaultSubject string
}

// File is the on-disk JSON layout of a bank.
type File struct {
	DefaultSubject string                       `json:"default_subject"`
	Subjects       map[string][]models.Question `json:"subjects"`
}

// New builds a bank from a subject -> questions map. Invalid questions are
// rejected so every lookup result satisfies the question invariants.
func New(subjects map[string][]models.Question, defaultSubject string) (*Bank, error) {
	b := &Bank{
		subjects: make(map[string][]models.Question, len(subjects)),
		names:    make(map[string]string, len(subjects)),
	}
	for name, questions := range subjects {
		if err := b.add(name, questions); err != nil {
			return nil, err
		}
	}

	if _, ok := b.subjects[models.SubjectID(defaultSubject)]; !ok {
		return nil, fmt.Errorf("default subject %q has no questions", defaultSubject)
	}
	b.defaultSubject = models.SubjectID(defaultSubject)
	return b, nil
}

// Default returns the bank embedded in the binary.
func Default() (*Bank, error) {
	return Parse(defaultBankJSON)
}

// Parse decodes a bank from its JSON representation.
func Parse(data []byte) (*Bank, error) {
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode question bank: %w", err)
	}
	return New(f.Subjects, f.DefaultSubject)
}

// Merge returns a new bank with extra questions appended per subject.
// The receiver is left untouched.
func (b *Bank) Merge(extra map[string][]models.Question) (*Bank, error) {
	merged := make(map[string][]models.Question, len(b.subjects)+len(extra))
	for id, questions := range b.subjects {
		merged[b.names[id]] = append([]models.Question(nil), questions...)
	}
	for name, questions := range extra {
		key := name
		if existing, ok := b.names[models.SubjectID(name)]; ok {
			key = existing
		}
		merged[key] = append(merged[key], questions...)
	}
	return New(merged, b.names[b.defaultSubject])
}

// Lookup returns a copy of the questions for subject, matched case
// insensitively. Unknown subjects get the default subject's questions; the
// second return value reports whether the subject itself was found.
func (b *Bank) Lookup(subject string) ([]models.Question, bool) {
	questions, ok := b.subjects[models.SubjectID(subject)]
	if !ok {
		questions = b.subjects[b.defaultSubject]
	}
	out := make([]models.Question, len(questions))
	for i, q := range questions {
		out[i] = q.Clone()
	}
	return out, ok
}

// Subjects lists the display names of all subjects, sorted.
func (b *Bank) Subjects() []string {
	names := make([]string, 0, len(b.names))
	for _, name := range b.names {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultSubject is the display name of the fallback subject.
func (b *Bank) DefaultSubject() string {
	return b.names[b.defaultSubject]
}

func (b *Bank) add(name string, questions []models.Question) error {
	if len(questions) == 0 {
		return nil
	}
	name = strings.TrimSpace(name)
	id := models.SubjectID(name)
	if id == "" {
		return fmt.Errorf("subject name %q is empty", name)
	}
	for i, q := range questions {
		if err := q.Validate(); err != nil {
			return fmt.Errorf("subject %q question %d: %w", name, i+1, err)
		}
		b.subjects[id] = append(b.subjects[id], q.Clone())
	}
	if _, ok := b.names[id]; !ok {
		b.names[id] = name
	}
	return nil
}
