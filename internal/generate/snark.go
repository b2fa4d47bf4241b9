package generate

import (
	"crypto/sha256"
	"fmt"
	"math/rand"
)

// snarkPool is the editorial aside rotation. Each page assigns snark
// uniquely; the pool is large enough that collisions are rare.
var snarkPool = []string{
	"This will surely be handled with nuance.",
	"A statement was issued. Substance not included.",
	"Developing story. Developing patience.",
	"Everyone is monitoring the situation. Vigorously.",
	"A plan exists. The details are on a separate planet.",
	"Officials promise transparency, then immediately dim the lights.",
	"Sources say. Sources always say.",
	"The timeline is fluid. Like a spilled drink.",
	"The numbers were cited. Interpretation may vary.",
	"Now featuring: consequences.",
	"Updates may follow. So may regret.",
	"A compromise is proposed. Someone will hate it.",
	"A quick fix becomes the long-term architecture.",
	"This is fine. (It is not fine.)",
	"Nothing to see here—please stop looking.",
	"The plot thickens. The facts thin out.",
	"Expect clarity shortly. Bring snacks.",
	"A committee will decide, eventually.",
	"An investigation begins. Answers do not.",
	"Confidence was expressed. Evidence was not.",
	"This will age… interestingly.",
	"More soon, they assure us. They always do.",
	"Another day, another 'unprecedented' thing.",
	"Nothing says stability like emergency meetings.",
	"A 'final' decision enters its sequel era.",
	"The bar was low. They brought a shovel.",
	"Everyone agrees. On nothing.",
	"A 'temporary' measure settles in permanently.",
	"A confident forecast meets chaotic reality.",
	"Unclear. Remains unclear. Probably will stay unclear.",
	"A 'strategy' is announced. Execution sold separately.",
	"The explanation is technically words.",
}

// pickSnark returns a snark line not yet used on this page. If the pool is
// somehow exhausted it falls back to a hashed variant that is still unique.
func pickSnark(used map[string]struct{}, r *rand.Rand) string {
	for i := 0; i < 50; i++ {
		s := snarkPool[r.Intn(len(snarkPool))]
		if _, ok := used[s]; !ok {
			used[s] = struct{}{}
			return s
		}
	}
	h := sha256.Sum256([]byte(fmt.Sprintf("%d", r.Int63())))
	s := fmt.Sprintf("Updates pending. (%x)", h[:8])
	used[s] = struct{}{}
	return s
}
