package internal

import (
	"errors"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

var inclusionRe = regexp.MustCompile(InclusionPattern)

// ErrInclusionPasses is returned when markers survive MaxPasses passes.
var ErrInclusionPasses = errors.New(ErrMsgInclusionPasses)

// LoaderFunc returns the raw content of the named template.
type LoaderFunc func(name string) (string, error)

// InclusionProcessor expands {{ include('name') }} markers until none remain.
type InclusionProcessor struct {
	load      LoaderFunc
	maxPasses int
	logger    *zap.Logger
}

// NewInclusionProcessor creates a processor. maxPasses <= 0 means no bound.
func NewInclusionProcessor(load LoaderFunc, maxPasses int, logger *zap.Logger) *InclusionProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InclusionProcessor{
		load:      load,
		maxPasses: maxPasses,
		logger:    logger,
	}
}

// Process replaces every inclusion marker with the content of the referenced
// template. Included content is scanned again, so nested inclusions are
// expanded too. Text without markers is returned unchanged.
func (p *InclusionProcessor) Process(text string) (string, error) {
	if p.load == nil {
		return "", errors.New(ErrMsgNilLoader)
	}

	p.logger.Debug(LogMsgInclusionStart, zap.Int(LogFieldLength, len(text)))

	pass := 0
	for {
		matches := inclusionRe.FindAllStringSubmatch(text, -1)
		if len(matches) == 0 {
			break
		}
		if p.maxPasses > 0 && pass >= p.maxPasses {
			p.logger.Warn(LogMsgInclusionLimit,
				zap.Int(LogFieldPass, pass),
				zap.Int(LogFieldMarkers, len(matches)),
			)
			return "", ErrInclusionPasses
		}
		pass++

		seen := make(map[string]struct{}, len(matches))
		for _, m := range matches {
			marker, name := m[0], m[1]
			if _, ok := seen[marker]; ok {
				continue
			}
			seen[marker] = struct{}{}

			content, err := p.load(name)
			if err != nil {
				return "", err
			}
			text = strings.ReplaceAll(text, marker, content)
		}

		p.logger.Debug(LogMsgInclusionPass,
			zap.Int(LogFieldPass, pass),
			zap.Int(LogFieldMarkers, len(seen)),
		)
	}

	p.logger.Debug(LogMsgInclusionEnd, zap.Int(LogFieldPass, pass))
	return text, nil
}

// HasInclusions reports whether text still holds an inclusion marker.
func HasInclusions(text string) bool {
	return inclusionRe.MatchString(text)
}

// InclusionNames lists the template names referenced by text, in order of
// first appearance, without duplicates.
func InclusionNames(text string) []string {
	matches := inclusionRe.FindAllStringSubmatch(text, -1)
	names := make([]string, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		names = append(names, m[1])
	}
	return names
}
