package bodies

import "github.com/papapumpkin/meridian/internal/document"

// Document renders every body under its name. Decoding the result yields
// equal settings.
func (m Map) Document() document.Value {
	fields := make(map[string]document.Value, len(m))
	for name, s := range m {
		fields[name] = s.Document()
	}
	return document.Map(fields)
}

// Document renders s as a body sub-document.
func (s *Settings) Document() document.Value {
	fields := map[string]document.Value{}
	if s == nil {
		return document.Map(fields)
	}
	if s.Mass != nil {
		fields[KeyMass] = document.Number(*s.Mass)
	}
	if s.Ephemeris != nil {
		fields[KeyEphemeris] = ephemerisDocument(s.Ephemeris)
	}
	if s.Rotation != nil {
		fields[KeyRotationModel] = rotationDocument(s.Rotation)
	}
	if s.Gravity != nil && s.Gravity.Model != nil {
		fields[KeyGravityField] = gravityDocument(s.Gravity.Model)
	}
	return document.Map(fields)
}

func numbers(xs ...float64) document.Value {
	items := make([]document.Value, len(xs))
	for i, x := range xs {
		items[i] = document.Number(x)
	}
	return document.List(items...)
}

func matrix(rows [][]float64) document.Value {
	items := make([]document.Value, len(rows))
	for i, row := range rows {
		items[i] = numbers(row...)
	}
	return document.List(items...)
}

func ephemerisDocument(e *EphemerisSettings) document.Value {
	f := map[string]document.Value{
		"frameOrigin":      document.String(e.FrameOrigin),
		"frameOrientation": document.String(e.FrameOrientation),
	}
	if e.Model == nil {
		return document.Map(f)
	}
	f[KeyType] = document.String(string(e.Model.EphemerisKind()))
	switch m := e.Model.(type) {
	case ConstantEphemeris:
		f["constantState"] = numbers(m.State[:]...)
	case KeplerEphemeris:
		f["initialStateInKeplerianElements"] = numbers(m.InitialElements[:]...)
		f["epochOfInitialState"] = document.Number(m.Epoch)
		f["centralBodyGravitationalParameter"] = document.Number(m.CentralBodyGravitationalParameter)
	case TabulatedEphemeris:
		f["epochs"] = numbers(m.Epochs...)
		states := make([]document.Value, len(m.States))
		for i, st := range m.States {
			states[i] = numbers(st[:]...)
		}
		f["states"] = document.List(states...)
	case InterpolatedSpiceEphemeris:
		f["initialTime"] = document.Number(m.InitialTime)
		f["finalTime"] = document.Number(m.FinalTime)
		f["timeStep"] = document.Number(m.TimeStep)
	}
	return document.Map(f)
}

func rotationDocument(r *RotationSettings) document.Value {
	f := map[string]document.Value{
		"originalFrame": document.String(r.OriginalFrame),
		"targetFrame":   document.String(r.TargetFrame),
	}
	if r.Model == nil {
		return document.Map(f)
	}
	f[KeyType] = document.String(string(r.Model.RotationKind()))
	if m, ok := r.Model.(SimpleRotation); ok {
		f["initialTime"] = document.Number(m.InitialTime)
		f["rightAscension"] = document.Number(m.RightAscension)
		f["declination"] = document.Number(m.Declination)
		f["initialMeridian"] = document.Number(m.InitialMeridian)
		f["rotationRate"] = document.Number(m.RotationRate)
	}
	return document.Map(f)
}

func gravityDocument(g GravityModel) document.Value {
	f := map[string]document.Value{KeyType: document.String(string(g.GravityKind()))}
	switch m := g.(type) {
	case PointMassGravity:
		f["gravitationalParameter"] = document.Number(m.GravitationalParameter)
	case SphericalHarmonicGravity:
		sphericalHarmonicFields(f, m)
	case TimeDependentSphericalHarmonicGravity:
		sphericalHarmonicFields(f, m.SphericalHarmonicGravity)
		f["referenceEpoch"] = document.Number(m.ReferenceEpoch)
		vars := make([]document.Value, len(m.Variations))
		for i, v := range m.Variations {
			vf := map[string]document.Value{
				KeyType:  document.String(string(v.Kind)),
				"degree": document.Number(float64(v.Degree)),
				"order":  document.Number(float64(v.Order)),
			}
			if v.Kind == VariationSecular {
				vf["cosineRate"] = document.Number(v.CosineRate)
				vf["sineRate"] = document.Number(v.SineRate)
			} else {
				vf["cosineAmplitude"] = document.Number(v.CosineAmplitude)
				vf["sineAmplitude"] = document.Number(v.SineAmplitude)
				vf["frequency"] = document.Number(v.Frequency)
				vf["phase"] = document.Number(v.Phase)
			}
			vars[i] = document.Map(vf)
		}
		f["variations"] = document.List(vars...)
	}
	return document.Map(f)
}

func sphericalHarmonicFields(f map[string]document.Value, g SphericalHarmonicGravity) {
	f["gravitationalParameter"] = document.Number(g.GravitationalParameter)
	f["referenceRadius"] = document.Number(g.ReferenceRadius)
	f["cosineCoefficients"] = matrix(g.Cosine)
	f["sineCoefficients"] = matrix(g.Sine)
	f["associatedReferenceFrame"] = document.String(g.AssociatedFrame)
}
