package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/procman/internal/common"
	"github.com/dmitrijs2005/procman/internal/dbx"
	"github.com/dmitrijs2005/procman/internal/server/models"
	"github.com/dmitrijs2005/procman/internal/server/repositories/processes"
	"github.com/dmitrijs2005/procman/internal/server/repositories/repomanager"
)

// maxTreeDepth caps tree assembly. A forest deeper than this (or one with a
// parent_id cycle) fails closed instead of walking forever.
const maxTreeDepth = 32

type ProcessService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewProcessService(db *sql.DB, repomanager repomanager.RepositoryManager) *ProcessService {
	return &ProcessService{
		db:          db,
		repomanager: repomanager,
	}
}

// checkParent resolves parentID through the owner-scoped Get, so a parent
// owned by another user is indistinguishable from a missing one.
func (s *ProcessService) checkParent(ctx context.Context, repo processes.Repository, ownerID, parentID int64) error {
	_, err := repo.Get(ctx, parentID, ownerID)
	return err
}

func (s *ProcessService) Create(ctx context.Context, ownerID int64, title string, description *string, parentID *int64) (*models.Process, error) {

	repo := s.repomanager.Processes(s.db)

	if parentID != nil {
		if err := s.checkParent(ctx, repo, ownerID, *parentID); err != nil {
			return nil, err
		}
	}

	process := &models.Process{
		OwnerID:     ownerID,
		ParentID:    parentID,
		Title:       title,
		Description: description,
	}

	return repo.Create(ctx, process)
}

func (s *ProcessService) Get(ctx context.Context, id, ownerID int64) (*models.Process, error) {
	return s.repomanager.Processes(s.db).Get(ctx, id, ownerID)
}

func (s *ProcessService) Update(ctx context.Context, id, ownerID int64, title string, description *string, parentID *int64) (*models.Process, error) {

	repo := s.repomanager.Processes(s.db)

	if parentID != nil {
		if *parentID == id {
			return nil, common.ErrorValidation
		}
		if err := s.checkParent(ctx, repo, ownerID, *parentID); err != nil {
			return nil, err
		}
	}

	process := &models.Process{
		ID:          id,
		OwnerID:     ownerID,
		ParentID:    parentID,
		Title:       title,
		Description: description,
	}

	return repo.Update(ctx, process)
}

// Toggle flips the completed flag. Completing is gated on every direct child
// being completed already; reopening is unconditional. The check and the flip
// run in one transaction so they see a consistent snapshot.
func (s *ProcessService) Toggle(ctx context.Context, id, ownerID int64) (*models.Process, error) {

	var result *models.Process

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Processes(tx)

		process, err := repo.Get(ctx, id, ownerID)
		if err != nil {
			return err
		}

		if !process.Completed {
			children, err := repo.ListChildren(ctx, ownerID, &id, 0, 0)
			if err != nil {
				return err
			}
			for _, child := range children {
				if !child.Completed {
					return common.ErrorIncompleteChildren
				}
			}
		}

		result, err = repo.ToggleComplete(ctx, id, ownerID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Delete removes the process and, via the schema's cascade, its whole
// subtree. The deleted node's representation is returned.
func (s *ProcessService) Delete(ctx context.Context, id, ownerID int64) (*models.Process, error) {
	return s.repomanager.Processes(s.db).Delete(ctx, id, ownerID)
}

// Tree assembles the process forest below parentID (nil for the root level).
// Skip and limit apply to the requested level only; descendant levels are
// fetched in full, mirroring the read API's contract.
func (s *ProcessService) Tree(ctx context.Context, ownerID int64, parentID *int64, skip, limit int) ([]*models.ProcessNode, error) {

	repo := s.repomanager.Processes(s.db)

	top, err := repo.ListChildren(ctx, ownerID, parentID, skip, limit)
	if err != nil {
		return nil, err
	}

	nodes := make([]*models.ProcessNode, 0, len(top))
	for _, process := range top {
		nodes = append(nodes, &models.ProcessNode{Process: *process})
	}

	if err := s.attachChildren(ctx, repo, ownerID, nodes); err != nil {
		return nil, err
	}

	return nodes, nil
}

// Subtree returns a single owner-scoped process with its children attached.
func (s *ProcessService) Subtree(ctx context.Context, id, ownerID int64) (*models.ProcessNode, error) {

	repo := s.repomanager.Processes(s.db)

	process, err := repo.Get(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	node := &models.ProcessNode{Process: *process}
	if err := s.attachChildren(ctx, repo, ownerID, []*models.ProcessNode{node}); err != nil {
		return nil, err
	}

	return node, nil
}

type treeItem struct {
	node  *models.ProcessNode
	depth int
}

// attachChildren walks the forest below roots with an explicit work list,
// fetching and linking children level by level. A revisited id or an
// exceeded depth cap reports common.ErrorTreeDepth.
func (s *ProcessService) attachChildren(ctx context.Context, repo processes.Repository, ownerID int64, roots []*models.ProcessNode) error {

	visited := make(map[int64]bool, len(roots))
	stack := make([]treeItem, 0, len(roots))
	for _, node := range roots {
		visited[node.ID] = true
		stack = append(stack, treeItem{node: node, depth: 1})
	}

	for len(stack) > 0 {
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if item.depth >= maxTreeDepth {
			return common.ErrorTreeDepth
		}

		children, err := repo.ListChildren(ctx, ownerID, &item.node.ID, 0, 0)
		if err != nil {
			return err
		}

		item.node.Children = make([]*models.ProcessNode, 0, len(children))
		for _, child := range children {
			if visited[child.ID] {
				return common.ErrorTreeDepth
			}
			visited[child.ID] = true

			childNode := &models.ProcessNode{Process: *child}
			item.node.Children = append(item.node.Children, childNode)
			stack = append(stack, treeItem{node: childNode, depth: item.depth + 1})
		}
	}

	return nil
}
