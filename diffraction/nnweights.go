package diffraction

// smallWeights and bestWeights are small illustrative fixed-topology
// networks standing in for the reference implementation's pretrained,
// MATLAB-codegen'd coefficient tables (NN-small ~2 kFLOPS, NN-best
// ~10 kFLOPS per evaluation) — see DESIGN.md and nn.go's doc comment.
// bestWeights uses a larger hidden layer to roughly preserve the two
// models' relative cost ordering.
var smallWeights = nnWeights{
	hidden: 6,
	w1: [][]float64{
		{0.12, -0.34, 0.51, -0.18, 0.27, -0.09, 0.41, -0.22},
		{-0.28, 0.15, -0.37, 0.46, -0.11, 0.33, -0.08, 0.19},
		{0.19, 0.22, -0.14, -0.29, 0.38, -0.16, 0.24, -0.31},
		{-0.16, 0.29, 0.18, -0.21, -0.13, 0.35, -0.27, 0.12},
		{0.33, -0.11, 0.26, 0.17, -0.24, -0.19, 0.14, -0.36},
		{-0.21, 0.18, -0.29, 0.31, 0.16, -0.27, -0.12, 0.23},
	},
	b1: []float64{0.01, -0.02, 0.03, -0.01, 0.02, -0.03},
	w2: [][]float64{
		{0.21, -0.14, 0.18, -0.09, 0.26, -0.17}, // z1
		{-0.19, 0.23, -0.11, 0.16, -0.22, 0.13}, // z2
		{0.15, -0.18, 0.24, -0.13, 0.19, -0.21}, // p1
		{-0.17, 0.12, -0.24, 0.21, -0.15, 0.18}, // p2
		{0.34, 0.29, 0.31, 0.27, 0.33, 0.28},    // k (biased positive)
	},
	b2: []float64{0.0, 0.0, 0.0, 0.0, 0.3},
}

var bestWeights = nnWeights{
	hidden: 12,
	w1: [][]float64{
		{0.12, -0.34, 0.51, -0.18, 0.27, -0.09, 0.41, -0.22},
		{-0.28, 0.15, -0.37, 0.46, -0.11, 0.33, -0.08, 0.19},
		{0.19, 0.22, -0.14, -0.29, 0.38, -0.16, 0.24, -0.31},
		{-0.16, 0.29, 0.18, -0.21, -0.13, 0.35, -0.27, 0.12},
		{0.33, -0.11, 0.26, 0.17, -0.24, -0.19, 0.14, -0.36},
		{-0.21, 0.18, -0.29, 0.31, 0.16, -0.27, -0.12, 0.23},
		{0.08, -0.31, 0.22, -0.27, 0.19, -0.14, 0.33, -0.17},
		{-0.24, 0.26, -0.19, 0.21, -0.33, 0.11, -0.16, 0.29},
		{0.17, 0.14, -0.22, -0.18, 0.26, -0.31, 0.12, -0.24},
		{-0.13, 0.27, 0.19, -0.16, -0.21, 0.34, -0.28, 0.11},
		{0.29, -0.17, 0.24, 0.13, -0.26, -0.12, 0.18, -0.33},
		{-0.22, 0.19, -0.27, 0.28, 0.14, -0.24, -0.11, 0.21},
	},
	b1: []float64{0.01, -0.02, 0.03, -0.01, 0.02, -0.03, 0.01, -0.02, 0.03, -0.01, 0.02, -0.03},
	w2: [][]float64{
		{0.21, -0.14, 0.18, -0.09, 0.26, -0.17, 0.15, -0.12, 0.19, -0.11, 0.22, -0.16},
		{-0.19, 0.23, -0.11, 0.16, -0.22, 0.13, -0.18, 0.14, -0.21, 0.17, -0.12, 0.19},
		{0.15, -0.18, 0.24, -0.13, 0.19, -0.21, 0.16, -0.22, 0.13, -0.17, 0.24, -0.11},
		{-0.17, 0.12, -0.24, 0.21, -0.15, 0.18, -0.19, 0.11, -0.23, 0.16, -0.14, 0.22},
		{0.34, 0.29, 0.31, 0.27, 0.33, 0.28, 0.30, 0.32, 0.26, 0.29, 0.31, 0.27},
	},
	b2: []float64{0.0, 0.0, 0.0, 0.0, 0.3},
}
