// Package simulate generates synthetic fingerprint study decision tables.
package simulate

import (
	"fmt"
	"math/rand/v2"

	"github.com/emiliopalmerini/fpstudy/internal/domain"
)

// Params describe a synthetic study. Every user enrolls Fingers fingers and
// records Samples verification samples per finger.
type Params struct {
	Users       int
	Fingers     int
	Samples     int
	FirstUserID int
	// FARate is the probability that an impostor attempt is accepted.
	FARate float64
	// FRRate is the probability that a genuine attempt is rejected.
	FRRate float64
	// Groups, when set, are assigned to users round robin.
	Groups []string
	Seed   uint64
}

// DefaultParams mirrors a small study: 72 users, 3 fingers, 40 samples.
func DefaultParams() Params {
	return Params{
		Users:       72,
		Fingers:     3,
		Samples:     40,
		FirstUserID: 10000,
		FARate:      1.0 / 50000,
		FRRate:      0.05,
	}
}

func (p Params) Validate() error {
	switch {
	case p.Users < 1:
		return fmt.Errorf("%w: users must be positive, got %d", domain.ErrConfiguration, p.Users)
	case p.Fingers < 1:
		return fmt.Errorf("%w: fingers must be positive, got %d", domain.ErrConfiguration, p.Fingers)
	case p.Samples < 1:
		return fmt.Errorf("%w: samples must be positive, got %d", domain.ErrConfiguration, p.Samples)
	case p.FARate < 0 || p.FARate > 1:
		return fmt.Errorf("%w: far rate %v outside [0, 1]", domain.ErrConfiguration, p.FARate)
	case p.FRRate < 0 || p.FRRate > 1:
		return fmt.Errorf("%w: frr rate %v outside [0, 1]", domain.ErrConfiguration, p.FRRate)
	}
	return nil
}

// UserID returns the ID of the i-th simulated user.
func (p Params) UserID(i int) int {
	return p.FirstUserID + i
}

func (p Params) group(i int) string {
	if len(p.Groups) == 0 {
		return ""
	}
	return p.Groups[i%len(p.Groups)]
}

func (p Params) table(rows []domain.DecisionRow) *domain.DecisionTable {
	if len(p.Groups) > 0 {
		return domain.NewDecisionTableWithGroups(rows)
	}
	return domain.NewDecisionTable(nil, rows)
}

// FAR generates one attempt per verify sample for every pair of enrolled
// template and verify finger that is not a genuine pair, including other
// fingers of the same user.
func FAR(p Params) (*domain.DecisionTable, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewPCG(p.Seed, 0xFA))

	fingers := p.Users * p.Fingers
	rows := make([]domain.DecisionRow, 0, (fingers*fingers-fingers)*p.Samples)
	for eu := range p.Users {
		for ef := range p.Fingers {
			for vu := range p.Users {
				for vf := range p.Fingers {
					if eu == vu && ef == vf {
						continue
					}
					for s := range p.Samples {
						d := domain.Reject
						if rng.Float64() < p.FARate {
							d = domain.Accept
						}
						rows = append(rows, domain.DecisionRow{
							EnrollUser:   p.UserID(eu),
							EnrollFinger: ef,
							VerifyUser:   p.UserID(vu),
							VerifyFinger: vf,
							VerifySample: s,
							Decision:     d,
							EnrollGroup:  p.group(eu),
							VerifyGroup:  p.group(vu),
						})
					}
				}
			}
		}
	}
	return p.table(rows), nil
}

// FRR generates one genuine attempt per verify sample of every finger.
func FRR(p Params) (*domain.DecisionTable, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewPCG(p.Seed, 0xF7))

	rows := make([]domain.DecisionRow, 0, p.Users*p.Fingers*p.Samples)
	for u := range p.Users {
		for f := range p.Fingers {
			for s := range p.Samples {
				d := domain.Accept
				if rng.Float64() < p.FRRate {
					d = domain.Reject
				}
				rows = append(rows, domain.DecisionRow{
					EnrollUser:   p.UserID(u),
					EnrollFinger: f,
					VerifyUser:   p.UserID(u),
					VerifyFinger: f,
					VerifySample: s,
					Decision:     d,
					EnrollGroup:  p.group(u),
					VerifyGroup:  p.group(u),
				})
			}
		}
	}
	return p.table(rows), nil
}
