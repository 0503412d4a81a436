// Package pkg provides the core libraries for keyplan, a keyboard config
// preprocessor and point-layout engine.
//
// # Overview
//
// keyplan turns a declarative keyboard description (YAML, JSON or TOML)
// into a named set of key positions. The pkg directory is organized as:
//
//  1. [config], [prepare] - the config tree and its macro passes
//  2. [expr], [units] - arithmetic expressions and the units dictionary
//  3. [point], [anchor], [points] - poses, anchors and zone layout
//  4. [pipeline] - orchestration (prepare → units → layout → preview)
//  5. [cache], [observability], [server] - infrastructure
//
// # Architecture
//
// The data flow through keyplan:
//
//	config document
//	     ↓
//	[config] decode into an ordered tree
//	     ↓
//	[prepare] unnest, inherit, parameterize
//	     ↓
//	[units] evaluate units and variables
//	     ↓
//	[points] lay out zones, mirror, autobind
//	     ↓
//	JSON points, SVG/DOT preview
//
// # Quick Start
//
//	runner := pipeline.NewRunner(nil, nil, nil)
//	res, err := runner.Execute(ctx, pipeline.Options{Input: data})
//	if err != nil {
//	    return err
//	}
//	for name, p := range res.Points.All() {
//	    fmt.Printf("%s: %.2f %.2f %.0f\n", name, p.X, p.Y, p.R)
//	}
package pkg
