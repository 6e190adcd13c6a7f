package export

import (
	"fmt"
	"io"
	"os"

	"climbprofile/internal/profile"
)

// Files names the outputs written next to a route
type Files struct {
	CSV      string
	ChartPNG string
	RoutePNG string
	HTML     string
}

// FilesFor derives output names from base, the route path without extension
func FilesFor(base string) Files {
	return Files{
		CSV:      base + ".csv",
		ChartPNG: base + ".png",
		RoutePNG: base + "-map.png",
		HTML:     base + ".html",
	}
}

// WriteAll writes the section table, both images and the HTML chart
func WriteAll(f Files, cp *profile.ClimbProfile, ov *profile.RouteOverlay, title string, size Size) error {
	if err := WriteFile(f.CSV, func(w io.Writer) error { return WriteCSV(w, cp) }); err != nil {
		return err
	}
	if err := WriteFile(f.ChartPNG, func(w io.Writer) error { return WriteChartPNG(w, cp, title, size) }); err != nil {
		return err
	}
	if err := WriteFile(f.RoutePNG, func(w io.Writer) error { return WriteRoutePNG(w, ov, title, size) }); err != nil {
		return err
	}
	return WriteFile(f.HTML, func(w io.Writer) error { return WriteChartHTML(w, cp, title) })
}

// WriteFile creates path and fills it with write
func WriteFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, cerr)
		}
	}()

	if err := write(f); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
