package main

import "math"

// UniqueCauseAreas returns the distinct cause areas across all vehicles in
// order of first appearance
func UniqueCauseAreas(vehicles []CharitableVehicle) []string {
	seen := make(map[string]bool)
	var causes []string
	for _, v := range vehicles {
		for _, c := range v.CauseAreas {
			if !seen[c] {
				seen[c] = true
				causes = append(causes, c)
			}
		}
	}
	return causes
}

// MissionAlignment is the share of vehicle causes the family also cares about
func MissionAlignment(vehicleCauses []string, family []FamilyMember) float64 {
	familyCauses := make(map[string]bool)
	for _, m := range family {
		for _, c := range m.CauseAreas {
			familyCauses[c] = true
		}
	}

	common := 0
	for _, c := range vehicleCauses {
		if familyCauses[c] {
			common++
		}
	}
	return float64(common) / math.Max(float64(len(vehicleCauses)), 1)
}

// ImpactScore weights distributed capital by cause diversity (capped at
// 1.2×) and mission alignment. Never negative.
func ImpactScore(distributions []float64, uniqueCauses int, alignment float64) float64 {
	total := 0.0
	for _, d := range distributions {
		total += d
	}
	diversity := math.Min(1.2, 0.8+0.1*float64(uniqueCauses))
	score := total * diversity * (0.5 + 0.5*alignment)
	return math.Max(score, 0)
}

// BalanceScore rates how well the final split between family and charity
// matches the philanthropic target, how far family wealth covers 25 years of
// expenses, and how interested the family is in giving. Result is in [0,1].
func BalanceScore(finalFamily, finalCharitable, totalExpenses, avgInterest, philanthropicTarget float64) float64 {
	ratioAlignment := 0.0
	if total := finalFamily + finalCharitable; total != 0 {
		familyRatio := finalFamily / total
		ratioAlignment = clamp01(1 - math.Abs(familyRatio-(1-philanthropicTarget)))
	}

	needsCoverage := 0.0
	if totalExpenses > 0 {
		needsCoverage = clamp01(math.Min(1, finalFamily/(25*totalExpenses)))
	}

	return 0.4*ratioAlignment + 0.4*needsCoverage + 0.2*clamp01(avgInterest)
}

// SuccessorReadiness is the mean philanthropic interest of the given successors
func SuccessorReadiness(members []FamilyMember, successors []int) float64 {
	if len(successors) == 0 {
		return 0
	}
	total := 0.0
	for _, idx := range successors {
		total += members[idx].PhilanthropicInterest
	}
	return total / float64(len(successors))
}

// FamilyEngagement compares available family hours with the plan minimum
func FamilyEngagement(involvement, minimum float64) float64 {
	if minimum <= 0 {
		return 0
	}
	return math.Min(1, involvement/minimum)
}

func clamp01(x float64) float64 {
	if math.IsNaN(x) || x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
