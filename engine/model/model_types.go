package model

// QuadVertices are the four corners of a unit quad centered on the origin in the Z=0 plane,
// counter-clockwise from the bottom left, colored red, green, blue and white.
var QuadVertices = []GPUVertex{
	{Position: [3]float32{-0.5, -0.5, 0}, Color: [3]float32{1, 0, 0}},
	{Position: [3]float32{0.5, -0.5, 0}, Color: [3]float32{0, 1, 0}},
	{Position: [3]float32{0.5, 0.5, 0}, Color: [3]float32{0, 0, 1}},
	{Position: [3]float32{-0.5, 0.5, 0}, Color: [3]float32{1, 1, 1}},
}

// QuadIndices split the quad into two counter-clockwise triangles (seen from +Z) sharing the edge 0-2.
var QuadIndices = []uint16{0, 1, 2, 0, 2, 3}
