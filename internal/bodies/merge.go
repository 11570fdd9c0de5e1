package bodies

import (
	"fmt"

	"github.com/papapumpkin/meridian/internal/document"
)

// Merge resolves every body named under bodiesPath. Bodies that set
// useDefaultSettings start from the provider's settings for the interval
// [start, end] and are overlaid field by field with their sub-document;
// the rest are decoded from the document alone. The interval is passed to
// the provider unchanged, so callers supply the already-padded kernel
// window.
func Merge(doc document.Value, bodiesPath document.Path, provider DefaultsProvider, start, end float64) (Map, error) {
	section, ok := document.Lookup(doc, bodiesPath)
	if !ok || section.IsNull() {
		return nil, document.Missing(bodiesPath)
	}
	if section.Kind() != document.KindMap {
		return nil, &document.SettingError{
			Path: bodiesPath.String(),
			Want: "map",
			Got:  section.Kind().String(),
			Err:  document.ErrTypeMismatch,
		}
	}

	var defaulted, explicit []string
	for _, name := range section.Keys() {
		use, err := document.Get(doc, bodiesPath.Key(name).Key(KeyUseDefaultSettings), false)
		if err != nil {
			return nil, err
		}
		if use {
			defaulted = append(defaulted, name)
		} else {
			explicit = append(explicit, name)
		}
	}

	out := make(Map, len(defaulted)+len(explicit))
	if len(defaulted) > 0 {
		seeded, err := defaults(provider, defaulted, start, end)
		if err != nil {
			return nil, document.Wrap(bodiesPath, err)
		}
		for _, name := range defaulted {
			base, ok := seeded[name]
			if !ok {
				return nil, &document.SettingError{
					Path: bodiesPath.Key(name).Key(KeyUseDefaultSettings).String(),
					Err:  fmt.Errorf("%w %q", ErrNoDefaultSettings, name),
				}
			}
			s := base.Clone()
			if err := s.Overlay(doc, bodiesPath.Key(name)); err != nil {
				return nil, err
			}
			out[name] = s
		}
	}
	for _, name := range explicit {
		s, err := Decode(doc, bodiesPath.Key(name))
		if err != nil {
			return nil, err
		}
		out[name] = s
	}
	return out, nil
}

func defaults(provider DefaultsProvider, names []string, start, end float64) (Map, error) {
	if provider == nil {
		return nil, fmt.Errorf("%w: no defaults provider for %v", ErrNoDefaultSettings, names)
	}
	return provider.DefaultSettings(names, start, end)
}

// EnforceFrame sets every ephemeris frame orientation and every rotation
// model's original frame to orientation.
func EnforceFrame(m Map, orientation string) {
	for _, s := range m {
		if s == nil {
			continue
		}
		if s.Ephemeris != nil {
			s.Ephemeris.FrameOrientation = orientation
		}
		if s.Rotation != nil {
			s.Rotation.OriginalFrame = orientation
		}
	}
}

// CheckFrames returns ErrInconsistentFrame naming the first body, in name
// order, whose ephemeris or rotation frame differs from orientation.
func CheckFrames(m Map, orientation string) error {
	for _, name := range m.Names() {
		s := m[name]
		if s == nil {
			continue
		}
		if s.Ephemeris != nil && s.Ephemeris.FrameOrientation != orientation {
			return fmt.Errorf("%w: bodies.%s.%s.frameOrientation is %q, global orientation is %q",
				ErrInconsistentFrame, name, KeyEphemeris, s.Ephemeris.FrameOrientation, orientation)
		}
		if s.Rotation != nil && s.Rotation.OriginalFrame != orientation {
			return fmt.Errorf("%w: bodies.%s.%s.originalFrame is %q, global orientation is %q",
				ErrInconsistentFrame, name, KeyRotationModel, s.Rotation.OriginalFrame, orientation)
		}
	}
	return nil
}
