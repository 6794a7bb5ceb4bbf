// Package selector chooses degenerate codons that encode a requested set of
// amino acids as specifically as possible, ranked by organism codon usage.
package selector

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/inodb/codon-genie/internal/gcode"
	"github.com/inodb/codon-genie/internal/usage"
)

// Selector analyses and ranks ambiguous codons. It is safe for concurrent use.
type Selector struct {
	code    *gcode.Table
	factory usage.Factory
	logger  *zap.Logger

	// Usage providers by organism id, built lazily on first use.
	mu        sync.RWMutex
	providers map[string]usage.Provider
	building  singleflight.Group
}

// New creates a selector translating codons with code and obtaining codon
// usage from factory.
func New(code *gcode.Table, factory usage.Factory) *Selector {
	return &Selector{
		code:      code,
		factory:   factory,
		logger:    zap.NewNop(),
		providers: make(map[string]usage.Provider),
	}
}

// SetLogger sets the logger for debug messages.
func (s *Selector) SetLogger(l *zap.Logger) {
	s.logger = l
}

// GeneticCode returns the genetic code used for translation.
func (s *Selector) GeneticCode() *gcode.Table {
	return s.code
}

func (s *Selector) cached(organismID string) (usage.Provider, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.providers[organismID]
	return p, ok
}

// Provider returns the usage provider for an organism, building it at most
// once even under concurrent first access. Failed builds are not cached.
func (s *Selector) Provider(organismID string) (usage.Provider, error) {
	if p, ok := s.cached(organismID); ok {
		return p, nil
	}

	v, err, _ := s.building.Do(organismID, func() (any, error) {
		// Double-check inside singleflight
		if p, ok := s.cached(organismID); ok {
			return p, nil
		}

		p, err := s.factory(organismID)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		s.providers[organismID] = p
		s.mu.Unlock()

		s.logger.Debug("created codon usage provider", zap.String("organism", organismID))
		return p, nil
	})
	if err != nil {
		return nil, fmt.Errorf("codon usage for organism %s: %w", organismID, err)
	}

	p, ok := v.(usage.Provider)
	if !ok {
		return nil, fmt.Errorf("unexpected provider type %T for organism %s", v, organismID)
	}
	return p, nil
}
