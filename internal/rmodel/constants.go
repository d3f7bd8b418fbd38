package rmodel

// BaseRPackages is the fixed set of packages shipped with every R
// interpreter; they are never treated as resolvable dependency edges.
var BaseRPackages = map[string]bool{
	"base":      true,
	"compiler":  true,
	"datasets":  true,
	"graphics":  true,
	"grDevices": true,
	"grid":      true,
	"methods":   true,
	"parallel":  true,
	"splines":   true,
	"stats":     true,
	"stats4":    true,
	"tcltk":     true,
	"tools":     true,
	"utils":     true,
}

// SupportedRVersions is the fixed ascending candidate list the resolver
// walks when no R version is locked, unioned with any Bioconductor-required
// versions at search time.
var SupportedRVersions = []string{
	"3.6.0", "3.6.3",
	"4.0.0", "4.0.2", "4.0.5",
	"4.1.0", "4.1.2", "4.1.3",
	"4.2.0", "4.2.1", "4.2.2", "4.2.3",
	"4.3.0", "4.3.1", "4.3.2", "4.3.3",
	"4.4.0", "4.4.1",
}

// BioconductorRMatrix maps a Bioconductor release to the minimum R series
// it requires.
var BioconductorRMatrix = map[string]string{
	"3.12": "4.0",
	"3.13": "4.1",
	"3.14": "4.1",
	"3.15": "4.2",
	"3.16": "4.2",
	"3.17": "4.3",
	"3.18": "4.3",
	"3.19": "4.4",
}
