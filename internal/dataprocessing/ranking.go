package dataprocessing

import (
	"sort"

	"contractreport/pkg/contracts/domain"
)

// RankingFields are the columns the branch ranking needs.
var RankingFields = []domain.Field{domain.FieldBranch, domain.FieldContractID, domain.FieldMenu}

// TopBranches ranks, for each target menu, the branches by the number of
// distinct contracts that reached that menu, keeping the first n. Equal
// counts are ordered by branch name. Menus without a single branch to rank
// are flagged NoData.
func TopBranches(t *domain.Table, targets []string, n int) []domain.BranchRanking {
	if !t.Has(RankingFields...) || len(targets) == 0 {
		return nil
	}

	rankings := make([]domain.BranchRanking, 0, len(targets))
	for _, target := range targets {
		rankings = append(rankings, rankMenu(t, target, n))
	}
	return rankings
}

func rankMenu(t *domain.Table, target string, n int) domain.BranchRanking {
	ranking := domain.BranchRanking{Menu: target}

	contracts := make(map[string]map[string]struct{})
	for _, rec := range t.Records {
		menu := t.Get(rec, domain.FieldMenu)
		if !menu.Valid || menu.String != target {
			continue
		}

		branch, id := t.Get(rec, domain.FieldBranch), t.Get(rec, domain.FieldContractID)
		if !branch.Valid || !id.Valid {
			continue
		}
		set, ok := contracts[branch.String]
		if !ok {
			set = make(map[string]struct{})
			contracts[branch.String] = set
		}
		set[id.String] = struct{}{}
	}

	if len(contracts) == 0 {
		ranking.NoData = true
		return ranking
	}

	ranking.Branches = make([]domain.BranchCount, 0, len(contracts))
	for branch, set := range contracts {
		ranking.Branches = append(ranking.Branches, domain.BranchCount{Branch: branch, Contracts: len(set)})
	}
	sort.Slice(ranking.Branches, func(i, j int) bool {
		a, b := ranking.Branches[i], ranking.Branches[j]
		if a.Contracts != b.Contracts {
			return a.Contracts > b.Contracts
		}
		return a.Branch < b.Branch
	})

	if n > 0 && len(ranking.Branches) > n {
		ranking.Branches = ranking.Branches[:n]
	}
	return ranking
}
