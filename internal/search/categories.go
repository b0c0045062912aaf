// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import "strings"

// Category is an arXiv subject class.
type Category struct {
	Code string
	Name string
}

// Categories lists commonly used arXiv categories grouped by archive.
var Categories = []Category{
	{"cs.AI", "Artificial Intelligence"},
	{"cs.CL", "Computation and Language"},
	{"cs.CR", "Cryptography and Security"},
	{"cs.CV", "Computer Vision and Pattern Recognition"},
	{"cs.DB", "Databases"},
	{"cs.DS", "Data Structures and Algorithms"},
	{"cs.HC", "Human-Computer Interaction"},
	{"cs.IR", "Information Retrieval"},
	{"cs.IT", "Information Theory"},
	{"cs.LG", "Machine Learning"},
	{"cs.NE", "Neural and Evolutionary Computing"},
	{"cs.RO", "Robotics"},
	{"cs.SE", "Software Engineering"},
	{"cs.SY", "Systems and Control"},
	{"econ.EM", "Econometrics"},
	{"econ.TH", "Theoretical Economics"},
	{"math.CO", "Combinatorics"},
	{"math.IT", "Information Theory"},
	{"math.OC", "Optimization and Control"},
	{"math.PR", "Probability"},
	{"math.ST", "Statistics Theory"},
	{"physics.comp-ph", "Computational Physics"},
	{"physics.data-an", "Data Analysis, Statistics and Probability"},
	{"q-bio.BM", "Biomolecules"},
	{"q-bio.GN", "Genomics"},
	{"q-bio.QM", "Quantitative Methods"},
	{"q-fin.CP", "Computational Finance"},
	{"q-fin.RM", "Risk Management"},
	{"q-fin.ST", "Statistical Finance"},
	{"stat.AP", "Applications"},
	{"stat.CO", "Computation"},
	{"stat.ML", "Machine Learning"},
	{"stat.TH", "Theory"},
}

// FilterCategories returns the categories whose code starts with archive
// (e.g. "cs" or "stat."). An empty archive returns every category.
func FilterCategories(archive string) []Category {
	if archive == "" {
		return Categories
	}
	prefix := strings.TrimSuffix(archive, ".") + "."
	var out []Category
	for _, c := range Categories {
		if strings.HasPrefix(c.Code, prefix) {
			out = append(out, c)
		}
	}
	return out
}
