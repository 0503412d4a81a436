// Package render groups the output renderers for laid-out points.
//
// The [preview] subpackage draws a point set as a Graphviz graph, either
// as DOT text or as SVG rendered with neato.
package render
