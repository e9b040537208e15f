package index

import "github.com/emiliopalmerini/fpstudy/internal/domain"

// Key is a fixed-width column tuple whose levels can be read in order.
type Key interface {
	comparable
	// Depth is the number of levels in the key.
	Depth() int
	// Level returns the value of level i, 0 <= i < Depth().
	Level(i int) int
}

// FARKey orders an impostor attempt by the FAR hierarchy's nesting:
// verify user, template user, verify finger, template finger, verify sample.
type FARKey struct {
	VerifyUser   int
	EnrollUser   int
	VerifyFinger int
	EnrollFinger int
	VerifySample int
}

func FARKeyOf(r domain.DecisionRow) FARKey {
	return FARKey{
		VerifyUser:   r.VerifyUser,
		EnrollUser:   r.EnrollUser,
		VerifyFinger: r.VerifyFinger,
		EnrollFinger: r.EnrollFinger,
		VerifySample: r.VerifySample,
	}
}

func (k FARKey) Depth() int { return 5 }

func (k FARKey) Level(i int) int {
	switch i {
	case 0:
		return k.VerifyUser
	case 1:
		return k.EnrollUser
	case 2:
		return k.VerifyFinger
	case 3:
		return k.EnrollFinger
	case 4:
		return k.VerifySample
	}
	panic("index: FARKey level out of range")
}

// FRRKey orders a genuine attempt by the FRR hierarchy's nesting: user,
// finger, verify sample. Genuine attempts share user and finger between
// enroll and verify, so the enroll columns are used.
type FRRKey struct {
	User   int
	Finger int
	Sample int
}

func FRRKeyOf(r domain.DecisionRow) FRRKey {
	return FRRKey{
		User:   r.EnrollUser,
		Finger: r.EnrollFinger,
		Sample: r.VerifySample,
	}
}

func (k FRRKey) Depth() int { return 3 }

func (k FRRKey) Level(i int) int {
	switch i {
	case 0:
		return k.User
	case 1:
		return k.Finger
	case 2:
		return k.Sample
	}
	panic("index: FRRKey level out of range")
}
