package assign

import "gonum.org/v1/gonum/mat"

// maximize solves the square assignment problem over the score matrix,
// returning for each row the column it is assigned to. Kuhn-Munkres with
// potentials, O(n^3). Scores are negated into costs so the minimization
// form applies.
func maximize(scores *mat.Dense) []int {
	n, _ := scores.Dims()
	if n == 0 {
		return nil
	}

	// 1-based working arrays; index 0 is the virtual root of each
	// augmenting search.
	u := make([]float64, n+1)
	v := make([]float64, n+1)
	matchedRow := make([]int, n+1) // matchedRow[col] = row currently assigned to col
	way := make([]int, n+1)

	const inf = 1e18

	for row := 1; row <= n; row++ {
		matchedRow[0] = row
		minv := make([]float64, n+1)
		used := make([]bool, n+1)

		for i := range minv {
			minv[i] = inf
		}

		col := 0

		for {
			used[col] = true
			rowHere := matchedRow[col]
			delta := inf
			nextCol := 0

			for c := 1; c <= n; c++ {
				if used[c] {
					continue
				}

				cost := -scores.At(rowHere-1, c-1) - u[rowHere] - v[c]
				if cost < minv[c] {
					minv[c] = cost
					way[c] = col
				}

				if minv[c] < delta {
					delta = minv[c]
					nextCol = c
				}
			}

			for c := 0; c <= n; c++ {
				if used[c] {
					u[matchedRow[c]] += delta
					v[c] -= delta
				} else {
					minv[c] -= delta
				}
			}

			col = nextCol
			if matchedRow[col] == 0 {
				break
			}
		}

		// Augment along the found path.
		for col != 0 {
			prev := way[col]
			matchedRow[col] = matchedRow[prev]
			col = prev
		}
	}

	assignment := make([]int, n)
	for c := 1; c <= n; c++ {
		assignment[matchedRow[c]-1] = c - 1
	}

	return assignment
}
