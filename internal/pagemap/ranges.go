package pagemap

import "sort"

// Ranges resolves every account's page list, in segmentation order.
// Ranges for different accounts never overlap. The even-split fallback
// applies only when the mapping is empty (no page carried a recognizable
// account number); a partially populated mapping gives an unmarked account
// an empty range rather than guessed pages overlapping a marked span.
func Ranges(m Mapping, accounts []string, pageCount int) [][]int {
	out := make([][]int, len(accounts))
	if len(m) == 0 {
		for i := range accounts {
			out[i] = evenSplitBlock(i, len(accounts), pageCount)
		}
		return out
	}
	for i := range accounts {
		out[i] = AccountRange(m, accounts, i, pageCount)
	}
	return out
}

// AccountRange resolves one account's pages: from its first marked page up
// to (but excluding) the next page marked for a different account, or end
// of document. Unmarked pages inside the span belong to the account by
// contiguity (continuation pages carry no printed account number). An
// account with no marked pages resolves to an empty range.
func AccountRange(m Mapping, accounts []string, idx, pageCount int) []int {
	account := accounts[idx]

	var marked []int
	for p, a := range m {
		if a == account && p >= 0 && p < pageCount {
			marked = append(marked, p)
		}
	}
	if len(marked) == 0 {
		return nil
	}
	sort.Ints(marked)

	start := marked[0]
	bound := pageCount
	for p := start + 1; p < pageCount; p++ {
		if a, ok := m[p]; ok && a != account {
			bound = p
			break
		}
	}

	pages := make([]int, 0, bound-start)
	for p := start; p < bound; p++ {
		pages = append(pages, p)
	}
	return pages
}

// evenSplitBlock divides the document into contiguous equal-sized blocks,
// one per account in segmentation order, with the last account absorbing
// the remainder. Guarantees every account at least one page when
// pageCount >= accountCount.
func evenSplitBlock(idx, accountCount, pageCount int) []int {
	if accountCount == 0 || pageCount == 0 || idx >= accountCount {
		return nil
	}
	size := pageCount / accountCount
	if size == 0 {
		// Fewer pages than accounts: one page each while they last.
		if idx >= pageCount {
			return nil
		}
		return []int{idx}
	}
	start := idx * size
	end := start + size
	if idx == accountCount-1 {
		end = pageCount
	}
	pages := make([]int, 0, end-start)
	for p := start; p < end; p++ {
		pages = append(pages, p)
	}
	return pages
}
