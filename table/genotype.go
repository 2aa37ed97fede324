package table

import "strings"

// CreLineFromGenotype extracts the cre driver line from a full genotype
// string such as "Vip-IRES-Cre/wt;Ai148(TIT2L-GC6f-ICL-tTA2)/wt".
//
// The cre line is the allele name before the first "/" of any ";"-separated
// segment whose name ends in "-Cre". Returns false if no segment qualifies.
func CreLineFromGenotype(fullGenotype string) (string, bool) {
	for _, segment := range strings.Split(fullGenotype, ";") {
		allele, _, _ := strings.Cut(segment, "/")
		allele = strings.TrimSpace(allele)
		if strings.HasSuffix(allele, "-Cre") {
			return allele, true
		}
	}
	return "", false
}
