package catalog

import (
	"fmt"
	"strings"

	"shopcatalog/internal/models"
)

type node struct {
	category     *models.Category
	children     []int64
	directActive int
}

// Tree is an arena of categories addressed by id. Parent edges are explicit and
// every traversal carries a visited set, so a corrupt parent chain surfaces as
// ErrCategoryTreeCorrupt instead of looping.
type Tree struct {
	nodes map[int64]*node
	roots []int64
}

// NewTree builds the arena. activeCounts holds the number of active products
// attached directly to each category. Sibling order follows the input order.
func NewTree(categories []*models.Category, activeCounts map[int64]int) *Tree {
	t := &Tree{nodes: make(map[int64]*node, len(categories))}
	for _, c := range categories {
		t.nodes[c.ID] = &node{category: c, directActive: activeCounts[c.ID]}
	}
	for _, c := range categories {
		if c.ParentID == nil {
			t.roots = append(t.roots, c.ID)
			continue
		}
		parent, ok := t.nodes[*c.ParentID]
		if !ok {
			t.roots = append(t.roots, c.ID)
			continue
		}
		parent.children = append(parent.children, c.ID)
	}
	return t
}

func (t *Tree) Len() int {
	return len(t.nodes)
}

func (t *Tree) Node(id int64) (*models.Category, error) {
	n, ok := t.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrCategoryNotFound, id)
	}
	return n.category, nil
}

func (t *Tree) Roots() []*models.Category {
	out := make([]*models.Category, 0, len(t.roots))
	for _, id := range t.roots {
		out = append(out, t.nodes[id].category)
	}
	return out
}

func (t *Tree) Children(id int64) []*models.Category {
	n, ok := t.nodes[id]
	if !ok {
		return nil
	}
	out := make([]*models.Category, 0, len(n.children))
	for _, childID := range n.children {
		out = append(out, t.nodes[childID].category)
	}
	return out
}

// DirectActiveCount is the number of active products attached to id itself.
func (t *Tree) DirectActiveCount(id int64) int {
	if n, ok := t.nodes[id]; ok {
		return n.directActive
	}
	return 0
}

func (t *Tree) checkAncestry(id int64) error {
	visited := make(map[int64]struct{}, 8)
	current := t.nodes[id]
	for current != nil {
		if _, seen := visited[current.category.ID]; seen {
			return fmt.Errorf("%w at category %d", ErrCategoryTreeCorrupt, current.category.ID)
		}
		visited[current.category.ID] = struct{}{}
		if current.category.ParentID == nil {
			return nil
		}
		current = t.nodes[*current.category.ParentID]
	}
	return nil
}

// EffectiveType resolves auto categories from the current child and product state.
func (t *Tree) EffectiveType(id int64) (models.CategoryType, error) {
	n, ok := t.nodes[id]
	if !ok {
		return "", fmt.Errorf("%w: %d", ErrCategoryNotFound, id)
	}
	if err := t.checkAncestry(id); err != nil {
		return "", err
	}
	switch n.category.CategoryType {
	case models.CategoryTypeContainer, models.CategoryTypeDirect:
		return n.category.CategoryType, nil
	}
	return resolveAuto(len(n.children) > 0, n.directActive > 0), nil
}

func resolveAuto(hasSubcategories, hasDirectProducts bool) models.CategoryType {
	switch {
	case hasSubcategories && !hasDirectProducts:
		return models.CategoryTypeContainer
	case !hasSubcategories && hasDirectProducts:
		return models.CategoryTypeDirect
	case hasSubcategories && hasDirectProducts:
		return models.CategoryTypeContainer
	default:
		return models.CategoryTypeDirect
	}
}

// Descendants returns every category below id in depth-first pre-order.
func (t *Tree) Descendants(id int64) ([]int64, error) {
	root, ok := t.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrCategoryNotFound, id)
	}
	visited := map[int64]struct{}{id: {}}
	var out []int64
	stack := reverse(root.children)
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := visited[current]; seen {
			return nil, fmt.Errorf("%w below category %d", ErrCategoryTreeCorrupt, id)
		}
		visited[current] = struct{}{}
		out = append(out, current)
		stack = append(stack, reverse(t.nodes[current].children)...)
	}
	return out, nil
}

func reverse(ids []int64) []int64 {
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[len(ids)-1-i] = id
	}
	return out
}

// ScopeCategoryIDs lists the categories whose direct products make up the
// active product set of id: itself plus all descendants for a container,
// itself alone for a direct category.
func (t *Tree) ScopeCategoryIDs(id int64) ([]int64, error) {
	typ, err := t.EffectiveType(id)
	if err != nil {
		return nil, err
	}
	if typ != models.CategoryTypeContainer {
		return []int64{id}, nil
	}
	desc, err := t.Descendants(id)
	if err != nil {
		return nil, err
	}
	return append([]int64{id}, desc...), nil
}

func (t *Tree) ProductCount(id int64) (int, error) {
	scope, err := t.ScopeCategoryIDs(id)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, categoryID := range scope {
		total += t.nodes[categoryID].directActive
	}
	return total, nil
}

// WouldCreateCycle reports whether making parentID the parent of id breaks acyclicity.
func (t *Tree) WouldCreateCycle(id, parentID int64) bool {
	if id == parentID {
		return true
	}
	visited := map[int64]struct{}{}
	current := t.nodes[parentID]
	for current != nil {
		cid := current.category.ID
		if cid == id {
			return true
		}
		if _, seen := visited[cid]; seen {
			return true
		}
		visited[cid] = struct{}{}
		if current.category.ParentID == nil {
			return false
		}
		current = t.nodes[*current.category.ParentID]
	}
	return false
}

var sectionWords = []struct {
	word    string
	section models.DisplaySection
}{
	{"مردانه", models.SectionMen},
	{"زنانه", models.SectionWomen},
	{"یونیسکس", models.SectionUnisex},
}

// DisplaySection returns the stored section or detects it from gender words in the name.
func DisplaySection(c *models.Category) models.DisplaySection {
	if c.DisplaySection != "" {
		return c.DisplaySection
	}
	for _, sw := range sectionWords {
		if strings.Contains(c.Name, sw.word) {
			return sw.section
		}
	}
	return models.SectionGeneral
}

// Navigation builds the storefront menu: visible top-level categories that have
// products or subcategories, each with its visible subcategories. A non-empty
// section keeps only subcategories of that section and top-level categories
// that match it themselves or through a subcategory.
func (t *Tree) Navigation(section models.DisplaySection) ([]*models.CategoryNode, error) {
	var out []*models.CategoryNode
	for _, root := range t.Roots() {
		if !root.IsVisible {
			continue
		}
		top, err := t.categoryNode(root)
		if err != nil {
			return nil, err
		}
		children := t.Children(root.ID)
		for _, child := range children {
			if !child.IsVisible {
				continue
			}
			if section != "" && DisplaySection(child) != section {
				continue
			}
			sub, err := t.categoryNode(child)
			if err != nil {
				return nil, err
			}
			top.Subcategories = append(top.Subcategories, sub)
		}
		if top.ProductCount == 0 && len(children) == 0 {
			continue
		}
		if section != "" && top.DisplaySection != section && len(top.Subcategories) == 0 {
			continue
		}
		out = append(out, top)
	}
	return out, nil
}

func (t *Tree) categoryNode(c *models.Category) (*models.CategoryNode, error) {
	typ, err := t.EffectiveType(c.ID)
	if err != nil {
		return nil, err
	}
	count, err := t.ProductCount(c.ID)
	if err != nil {
		return nil, err
	}
	return &models.CategoryNode{
		ID:             c.ID,
		Name:           c.Name,
		Label:          c.DisplayName(),
		Type:           typ,
		DisplaySection: DisplaySection(c),
		ProductCount:   count,
	}, nil
}
