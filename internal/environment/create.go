package environment

import (
	"errors"
	"fmt"
	"strings"

	"github.com/papapumpkin/meridian/internal/bodies"
	"github.com/papapumpkin/meridian/internal/dag"
)

// Options carries the kernel-service collaborators. Either may be nil when
// no body uses a kernel-backed model.
type Options struct {
	States       StateQuerier
	Orientations OrientationQuerier
}

// Create instantiates one runtime body per settings entry. Ephemerides are
// left in their own frames; call SetGlobalFrame once every body exists.
func Create(m bodies.Map, opts Options) (Bodies, error) {
	out := make(Bodies, len(m))
	for _, name := range m.Names() {
		b, err := createBody(name, m[name], opts)
		if err != nil {
			return nil, fmt.Errorf("body %s: %w", name, err)
		}
		out[name] = b
	}
	return out, nil
}

func createBody(name string, s *bodies.Settings, opts Options) (*Body, error) {
	b := &Body{Name: name}
	if s == nil {
		return b, nil
	}
	var err error
	if s.Ephemeris != nil {
		if b.Ephemeris, err = createEphemeris(name, s.Ephemeris, opts.States); err != nil {
			return nil, err
		}
	}
	if s.Rotation != nil {
		if b.Rotation, err = createRotation(s.Rotation, opts.Orientations); err != nil {
			return nil, err
		}
	}
	if s.Gravity != nil && s.Gravity.Model != nil {
		if b.Gravity, err = createGravity(s.Gravity.Model); err != nil {
			return nil, err
		}
	}
	switch {
	case s.Mass != nil:
		b.Mass = *s.Mass
	case b.Gravity != nil:
		b.Mass = b.Gravity.GravitationalParameter() / GravitationalConstant
	}
	return b, nil
}

func createEphemeris(name string, s *bodies.EphemerisSettings, q StateQuerier) (Ephemeris, error) {
	origin, orient := s.FrameOrigin, s.FrameOrientation
	switch m := s.Model.(type) {
	case bodies.ConstantEphemeris:
		return NewConstantEphemeris(m.State, origin, orient), nil
	case bodies.KeplerEphemeris:
		return NewKeplerEphemeris(m.InitialElements, m.Epoch, m.CentralBodyGravitationalParameter, origin, orient)
	case bodies.TabulatedEphemeris:
		return NewTabulatedEphemeris(m.Epochs, m.States, origin, orient)
	case bodies.DirectSpiceEphemeris:
		if q == nil {
			return nil, fmt.Errorf("directSpice ephemeris: %w", ErrMissingQuerier)
		}
		return NewSpiceEphemeris(q, name, origin, orient), nil
	case bodies.InterpolatedSpiceEphemeris:
		if q == nil {
			return nil, fmt.Errorf("interpolatedSpice ephemeris: %w", ErrMissingQuerier)
		}
		return NewInterpolatedSpiceEphemeris(q, name, origin, orient, m.InitialTime, m.FinalTime, m.TimeStep)
	}
	return nil, fmt.Errorf("%w: ephemeris %T", bodies.ErrUnknownModel, s.Model)
}

func createRotation(s *bodies.RotationSettings, q OrientationQuerier) (RotationModel, error) {
	switch m := s.Model.(type) {
	case bodies.SimpleRotation:
		return NewSimpleRotation(s.OriginalFrame, s.TargetFrame,
			m.InitialTime, m.RightAscension, m.Declination, m.InitialMeridian, m.RotationRate), nil
	case bodies.SpiceRotation:
		if q == nil {
			return nil, fmt.Errorf("spice rotation: %w", ErrMissingQuerier)
		}
		return NewSpiceRotation(q, s.OriginalFrame, s.TargetFrame), nil
	}
	return nil, fmt.Errorf("%w: rotation %T", bodies.ErrUnknownModel, s.Model)
}

func createGravity(m bodies.GravityModel) (GravityField, error) {
	switch g := m.(type) {
	case bodies.PointMassGravity:
		return PointMass{mu: g.GravitationalParameter}, nil
	case bodies.SphericalHarmonicGravity:
		return newSphericalHarmonicField(g), nil
	case bodies.TimeDependentSphericalHarmonicGravity:
		return newTimeDependentField(g)
	}
	return nil, fmt.Errorf("%w: gravity %T", bodies.ErrUnknownModel, m)
}

// SetGlobalFrame rewires every ephemeris to the global frame. All
// ephemerides must already use the global orientation. A body whose origin
// is another body is wrapped so that its state includes the origin body's
// global state; origins are settled in dependency order, so chains such as
// Probe → Moon → Earth → SSB resolve fully.
func SetGlobalFrame(b Bodies, origin, orientation string) error {
	g := dag.New()
	for _, name := range b.Names() {
		if err := g.AddNode(name); err != nil {
			return err
		}
	}
	for _, name := range b.Names() {
		eph := b[name].Ephemeris
		if eph == nil {
			continue
		}
		if eph.Orientation() != orientation {
			return fmt.Errorf("%w: body %s ephemeris uses %q, global orientation is %q",
				ErrInconsistentFrame, name, eph.Orientation(), orientation)
		}
		o := eph.Origin()
		if o == origin {
			continue
		}
		if !g.Has(o) {
			return fmt.Errorf("%w: body %s ephemeris origin %q is neither %q nor a body",
				ErrUnknownFrameOrigin, name, o, origin)
		}
		if err := g.AddEdge(name, o); err != nil {
			if errors.Is(err, dag.ErrCycle) || errors.Is(err, dag.ErrSelfEdge) {
				return fmt.Errorf("%w: %v", ErrFrameCycle, err)
			}
			return err
		}
	}

	order, err := g.TopologicalSort()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFrameCycle, err)
	}
	for _, name := range order {
		eph := b[name].Ephemeris
		if eph == nil || eph.Origin() == origin {
			continue
		}
		parent := b[eph.Origin()]
		if parent.Ephemeris == nil {
			return fmt.Errorf("%w: body %s is the origin of %s but has no ephemeris (origin chain of %s: %s)",
				ErrUnknownFrameOrigin, parent.Name, name, name, strings.Join(g.Ancestors(name), ", "))
		}
		b[name].Ephemeris = &TranslatedEphemeris{local: eph, origin: parent.Ephemeris, global: origin}
	}
	return nil
}
