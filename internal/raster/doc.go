// Package raster paints drawing commands into RGBA images.
//
// Shapes are flattened to polygons and filled with golang.org/x/image/vector.
// Strokes are expanded into one polygon per segment, join and cap; each
// piece is rasterized on its own and unioned into a coverage mask, so
// overlapping pieces never double the alpha. Text is drawn with the bundled
// Go fonts through golang.org/x/image/font/opentype.
//
// Output is anti-aliased but approximate: there is no exact stroke
// outline, no curve flattening tolerance control, and hatch patterns are
// aligned to the image origin.
package raster
