package tri2quad

// vertexBands resolves output vertex indices. The output vertices are numbered
// in three contiguous bands: copies of the input vertices, one midpoint per
// input edge (offset by the edge index), one centroid per input triangle
// (offset by the triangle index).
type vertexBands struct {
	nv    int // input vertices
	nedge int // input edges
}

func (b vertexBands) original(v int) int { return v }
func (b vertexBands) midpoint(edge int) int { return b.nv + edge }
func (b vertexBands) centroid(tri int) int { return b.nv + b.nedge + tri }

// size is the output vertex count for ntri triangles
func (b vertexBands) size(ntri int) int { return b.nv + b.nedge + ntri }

// triCornerEdges gives, for each local triangle vertex, the local edge leaving
// it and the local edge arriving at it. It relies on the mesh convention that
// local edge i joins local vertices i and i+1 (mod 3). The corner quad
// [v_i, mid(leaving), centroid, mid(arriving)] then winds like its triangle.
var triCornerEdges = [3][2]int{
	{0, 2},
	{1, 0},
	{2, 1},
}
