// Package preview draws a laid-out point set as a Graphviz graph.
//
// Every point becomes a box pinned at its position and sized by its key
// width and height. With [Options.Binds] set, edges join the points that
// autobind linked, which makes gaps in a matrix easy to spot.
//
// [ToDOT] produces DOT text; [RenderSVG] lays it out with neato and returns
// SVG bytes. [Render] dispatches on [Options.Format].
package preview
