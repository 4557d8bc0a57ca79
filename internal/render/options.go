package render

// CoastStyle holds the pens and fills passed to gmt coast. Empty fields are
// left out.
type CoastStyle struct {
	Shorelines string
	Water      string
	Lakes      string
}

var (
	// CoastFaint draws barely visible shorelines with pale water.
	CoastFaint = CoastStyle{
		Shorelines: "1/0.05p,180/180/185",
		Water:      "230/240/245",
		Lakes:      "230/240/245",
	}
	// CoastStandard draws a thin grey shoreline and no water fill.
	CoastStandard = CoastStyle{
		Shorelines: "1/0.25p,grey40",
	}
)

type Marker struct {
	Style string
	Fill  string
	Pen   string
}

type TickMode int

const (
	// TicksFixed annotates every FixedTick degrees.
	TicksFixed TickMode = iota
	// TicksAuto picks the interval from the axis span.
	TicksAuto
)

// Annotation is free text placed at a geographic point, outside the map
// frame if need be.
type Annotation struct {
	Text    string
	Lon     float64
	Lat     float64
	Font    string
	Justify string
}

type Options struct {
	Projection string
	CPT        string
	Shading    string

	// Coast is nil when no coastline is drawn.
	Coast *CoastStyle

	Marker Marker

	Labels       bool
	LabelFont    string
	LabelJustify string
	LabelOffset  string

	Title string

	Legend         bool
	LegendPosition string
	LegendXLabel   string
	LegendYLabel   string

	Ticks     TickMode
	FixedTick float64

	DPI int

	Annotations []Annotation
}

// DefaultOptions matches the station map layout: a 22 cm Mercator map with
// dark red triangles.
func DefaultOptions() Options {
	return Options{
		Projection: "M22c",
		CPT:        "geo",
		Shading:    "+a315+ne0.2+nt0.8",
		Marker: Marker{
			Style: "t0.7c",
			Fill:  "180/40/40",
			Pen:   "1.5p,120/20/20",
		},
		LabelFont:      "10p,Helvetica-Bold,black",
		LabelJustify:   "LM",
		LabelOffset:    "0.3c/0.1c",
		LegendPosition: "JMR+w12c/0.6c+o2.5c/0c",
		LegendXLabel:   "Elevation (m)",
		LegendYLabel:   "m",
		Ticks:          TicksFixed,
		FixedTick:      1,
		DPI:            300,
	}
}
