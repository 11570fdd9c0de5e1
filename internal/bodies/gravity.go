package bodies

import (
	"github.com/papapumpkin/meridian/internal/document"
)

func overlayGravity(cur *GravitySettings, doc document.Value, at document.Path) (*GravitySettings, error) {
	var model GravityModel
	current := ""
	if cur != nil && cur.Model != nil {
		model = cloneGravity(cur.Model)
		current = string(cur.Model.GravityKind())
	}
	kind, keep, err := modelType(doc, at, current)
	if err != nil {
		return nil, err
	}
	if !keep {
		switch GravityKind(kind) {
		case GravityPointMass:
			model = PointMassGravity{}
		case GravitySphericalHarmonic:
			model = SphericalHarmonicGravity{}
		case GravityTimeDependentSphericalHarmonic:
			model = TimeDependentSphericalHarmonicGravity{}
		default:
			return nil, unknownModel(at, kind)
		}
	}

	r := &reader{doc: doc, at: at, keep: keep}
	switch m := model.(type) {
	case PointMassGravity:
		read(r, "gravitationalParameter", &m.GravitationalParameter)
		if m.GravitationalParameter <= 0 {
			r.fail("gravitationalParameter", "must be positive")
		}
		model = m
	case SphericalHarmonicGravity:
		readSphericalHarmonic(r, &m)
		model = m
	case TimeDependentSphericalHarmonicGravity:
		readSphericalHarmonic(r, &m.SphericalHarmonicGravity)
		read(r, "referenceEpoch", &m.ReferenceEpoch)
		m.Variations = readVariations(r, m.Variations, len(m.Cosine))
		model = m
	}
	if r.err != nil {
		return nil, r.err
	}
	return &GravitySettings{Model: model}, nil
}

func readSphericalHarmonic(r *reader, g *SphericalHarmonicGravity) {
	read(r, "gravitationalParameter", &g.GravitationalParameter)
	read(r, "referenceRadius", &g.ReferenceRadius)
	read(r, "cosineCoefficients", &g.Cosine)
	read(r, "sineCoefficients", &g.Sine)
	read(r, "associatedReferenceFrame", &g.AssociatedFrame)
	if r.err != nil {
		return
	}
	if g.GravitationalParameter <= 0 {
		r.fail("gravitationalParameter", "must be positive")
	}
	if g.ReferenceRadius <= 0 {
		r.fail("referenceRadius", "must be positive")
	}
	if len(g.Cosine) != len(g.Sine) {
		r.fail("sineCoefficients", "%d rows, cosine coefficients have %d", len(g.Sine), len(g.Cosine))
		return
	}
	for i := range g.Cosine {
		if len(g.Cosine[i]) != len(g.Sine[i]) {
			r.fail("sineCoefficients", "row %d has %d entries, cosine row has %d", i, len(g.Sine[i]), len(g.Cosine[i]))
			return
		}
	}
}

// readVariations replaces the whole variation list when the document names
// one.
func readVariations(r *reader, cur []CoefficientVariation, degrees int) []CoefficientVariation {
	if r.err != nil {
		return cur
	}
	list := r.at.Key("variations")
	if !document.Has(r.doc, list) {
		if r.keep {
			return cur
		}
		return nil
	}
	items, _ := document.Lookup(r.doc, list)
	if items.Kind() != document.KindList {
		r.err = &document.SettingError{
			Path: list.String(),
			Want: "list",
			Got:  items.Kind().String(),
			Err:  document.ErrTypeMismatch,
		}
		return cur
	}
	out := make([]CoefficientVariation, 0, items.Len())
	for i := range items.Items() {
		vr := &reader{doc: r.doc, at: list.Index(i)}
		var v CoefficientVariation
		var kind string
		read(vr, KeyType, &kind)
		read(vr, "degree", &v.Degree)
		read(vr, "order", &v.Order)
		v.Kind = VariationKind(kind)
		switch v.Kind {
		case VariationSecular:
			optional(vr, "cosineRate", &v.CosineRate)
			optional(vr, "sineRate", &v.SineRate)
		case VariationPeriodic:
			optional(vr, "cosineAmplitude", &v.CosineAmplitude)
			optional(vr, "sineAmplitude", &v.SineAmplitude)
			read(vr, "frequency", &v.Frequency)
			optional(vr, "phase", &v.Phase)
		default:
			if vr.err == nil {
				vr.err = unknownModel(list.Index(i), kind)
			}
		}
		if v.Degree < 0 || v.Degree >= degrees || v.Order < 0 || v.Order > v.Degree {
			vr.fail("degree", "degree %d order %d outside the coefficient field", v.Degree, v.Order)
		}
		if vr.err != nil {
			r.err = vr.err
			return cur
		}
		out = append(out, v)
	}
	return out
}
