package export

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/odesketch/internal/coords"
	"github.com/san-kum/odesketch/internal/dynamo"
	"github.com/san-kum/odesketch/internal/ode"
	"github.com/san-kum/odesketch/internal/storage"
)

type Sample struct {
	T     float64   `json:"t"`
	State []float64 `json:"state"`
	X     float64   `json:"x"`
	Y     float64   `json:"y"`
}

type Data struct {
	Run     storage.RunMetadata `json:"run"`
	Samples []Sample            `json:"samples"`
}

func NewData(meta storage.RunMetadata, tr *dynamo.Trajectory, display []coords.Point) Data {
	data := Data{Run: meta, Samples: make([]Sample, 0, tr.Len())}
	for i, t := range tr.Times {
		s := Sample{T: t, State: tr.States[i], X: t, Y: tr.States[i][0]}
		if i < len(display) {
			s.X, s.Y = display[i].X, display[i].Y
		}
		data.Samples = append(data.Samples, s)
	}
	return data
}

// FromSolution packages a fresh solve that has not been stored.
func FromSolution(settings ode.Settings, sol *ode.Solution) Data {
	return NewData(storage.NewMetadata(settings, sol), sol.Trajectory, sol.Display)
}

func (d Data) Points() []coords.Point {
	pts := make([]coords.Point, len(d.Samples))
	for i, s := range d.Samples {
		pts[i] = coords.Point{X: s.X, Y: s.Y}
	}
	return pts
}

func WriteJSON(w io.Writer, data Data) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// ExportJSON writes data to path, or to stdout when path is "-".
func ExportJSON(path string, data Data) error {
	if path == "-" {
		return WriteJSON(os.Stdout, data)
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, data)
}
