package service

import "folio/internal/models"

// buildThreads links a flat, oldest-first comment list into threads. Top-level
// comments come back newest first; replies keep creation order. Comments whose
// parent is missing are dropped.
func buildThreads(flat []*models.Comment) []*models.Comment {
	byID := make(map[string]*models.Comment, len(flat))
	for _, c := range flat {
		c.Replies = []*models.Comment{}
		byID[c.ID] = c
	}

	roots := make([]*models.Comment, 0)
	for _, c := range flat {
		if c.IsTopLevel() {
			roots = append(roots, c)
			continue
		}
		if parent, ok := byID[*c.ParentID]; ok {
			parent.Replies = append(parent.Replies, c)
		}
	}

	for i, j := 0, len(roots)-1; i < j; i, j = i+1, j-1 {
		roots[i], roots[j] = roots[j], roots[i]
	}
	return roots
}

// depthOf returns how many ancestors comment has within flat: 0 for a
// top-level comment.
func depthOf(comment *models.Comment, byID map[string]*models.Comment) int {
	depth := 0
	for cur := comment; !cur.IsTopLevel(); depth++ {
		parent, ok := byID[*cur.ParentID]
		if !ok || depth > len(byID) {
			break
		}
		cur = parent
	}
	return depth
}

// subtreeIDs returns rootID followed by the ids of every comment below it.
func subtreeIDs(rootID string, flat []*models.Comment) []string {
	children := make(map[string][]string)
	for _, c := range flat {
		if !c.IsTopLevel() {
			children[*c.ParentID] = append(children[*c.ParentID], c.ID)
		}
	}

	ids := []string{rootID}
	seen := map[string]bool{rootID: true}
	for i := 0; i < len(ids); i++ {
		for _, child := range children[ids[i]] {
			if !seen[child] {
				seen[child] = true
				ids = append(ids, child)
			}
		}
	}
	return ids
}

// indexByID maps comments by id.
func indexByID(flat []*models.Comment) map[string]*models.Comment {
	byID := make(map[string]*models.Comment, len(flat))
	for _, c := range flat {
		byID[c.ID] = c
	}
	return byID
}
