package service

import (
	"testing"

	"marketplace/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func treeCategory(id int64, parentID *int64, sortOrder int) model.Category {
	return model.Category{CategoryID: id, ShopID: 1, Name: "cat", ParentID: parentID, SortOrder: sortOrder, IsActive: true}
}

func TestBuildCategoryTree_NestsChildrenUnderParents(t *testing.T) {
	tree := buildCategoryTree([]model.Category{
		treeCategory(1, nil, 0),
		treeCategory(2, int64Ptr(1), 0),
		treeCategory(3, int64Ptr(2), 0),
		treeCategory(4, nil, 1),
	})

	require.Len(t, tree, 2)
	assert.Equal(t, int64(1), tree[0].CategoryID)
	assert.Equal(t, int64(4), tree[1].CategoryID)

	require.Len(t, tree[0].Children, 1)
	assert.Equal(t, int64(2), tree[0].Children[0].CategoryID)
	require.Len(t, tree[0].Children[0].Children, 1)
	assert.Equal(t, int64(3), tree[0].Children[0].Children[0].CategoryID)
}

func TestBuildCategoryTree_SortsBySortOrderThenID(t *testing.T) {
	tree := buildCategoryTree([]model.Category{
		treeCategory(5, nil, 2),
		treeCategory(9, nil, 1),
		treeCategory(2, nil, 1),
	})

	require.Len(t, tree, 3)
	assert.Equal(t, int64(2), tree[0].CategoryID)
	assert.Equal(t, int64(9), tree[1].CategoryID)
	assert.Equal(t, int64(5), tree[2].CategoryID)
}

func TestBuildCategoryTree_OrphansBecomeRoots(t *testing.T) {
	tree := buildCategoryTree([]model.Category{
		treeCategory(1, nil, 0),
		treeCategory(7, int64Ptr(42), 0), // parent not in the set
	})

	require.Len(t, tree, 2)
	assert.Equal(t, int64(1), tree[0].CategoryID)
	assert.Equal(t, int64(7), tree[1].CategoryID)
}

func TestBuildCategoryTree_Empty(t *testing.T) {
	assert.Empty(t, buildCategoryTree(nil))
}
