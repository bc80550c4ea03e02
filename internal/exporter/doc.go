// Package exporter renders report data into LaTeX document source. The
// emitted document is meant to be compiled to PDF by an external LaTeX
// toolchain; this package only produces the source text.
package exporter
