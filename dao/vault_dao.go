// api/dao/vault_dao.go
package dao

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	themis_errors "github.com/casewise/themis/api/errors"
	logger "github.com/casewise/themis/api/logging"
	"github.com/casewise/themis/api/model"
	themis_neo4j "github.com/casewise/themis/api/model/neo4j"
)

// VaultDAO persists the pseudonym mapping as ASSIGNED_TO relationships
// between users and cases. The anon id lives on the relationship, so a case
// subgraph can be read without ever touching the user node.
type VaultDAO struct {
	Driver neo4j.Driver
}

func NewVaultDAO(driver neo4j.Driver) *VaultDAO {
	return &VaultDAO{Driver: driver}
}

// GetOrCreatePseudonym returns the stable anon id for a (subject, case)
// pair, creating it on first assignment. The MERGE keeps an existing anon id
// on repeat calls, so the candidate uuid is only used when the relationship
// is first created.
func (dao *VaultDAO) GetOrCreatePseudonym(ctx context.Context, subjectID, caseID, role string) (*model.Pseudonym, error) {
	start := time.Now()
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	result, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (u:` + themis_neo4j.LabelUser + ` {id: $subjectID})
        MATCH (c:` + themis_neo4j.LabelCase + ` {id: $caseID})
        MERGE (u)-[r:` + themis_neo4j.RelAssignedTo + `]->(c)
        ON CREATE SET r.` + themis_neo4j.AttrAnonID + ` = $candidateAnonID,
                      r.` + themis_neo4j.AttrRole + ` = $role,
                      r.` + themis_neo4j.AttrCreatedAt + ` = $now
        RETURN r.` + themis_neo4j.AttrAnonID + ` as anonId, r.` + themis_neo4j.AttrCreatedAt + ` as createdAt
        `
		runResult, err := transaction.Run(query, map[string]interface{}{
			"subjectID":      subjectID,
			"caseID":         caseID,
			"role":           role,
			"candidateAnonID": uuid.New().String(),
			"now":            time.Now().UTC().Format(time.RFC3339),
		})
		if err != nil {
			return nil, themis_errors.ErrDatabaseOperation
		}
		if runResult.Next() {
			record := runResult.Record()
			anonID, _ := record.Get("anonId")
			createdAt, _ := record.Get("createdAt")
			return map[string]interface{}{"anonId": anonID, "createdAt": createdAt}, nil
		}
		// No row means the subject or the case does not exist.
		return nil, themis_errors.ErrNotFound
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to get or create pseudonym",
			zap.Error(err),
			zap.String("caseID", caseID),
			zap.Duration("duration", duration))
		return nil, err
	}

	values := result.(map[string]interface{})
	pseudonym := &model.Pseudonym{
		AnonID:    values["anonId"].(string),
		SubjectID: subjectID,
		CaseID:    caseID,
		CreatedAt: parseTime(values["createdAt"].(string)),
	}

	logger.Info("Pseudonym resolved",
		zap.String("anonID", pseudonym.AnonID),
		zap.String("caseID", caseID),
		zap.Duration("duration", duration))
	return pseudonym, nil
}

// ResolvePseudonym maps an anon id back to the real subject. This is the
// only inversion path in the system; authorization is enforced by the
// service layer before this call.
func (dao *VaultDAO) ResolvePseudonym(ctx context.Context, anonID string) (string, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (u:` + themis_neo4j.LabelUser + `)-[r:` + themis_neo4j.RelAssignedTo + ` {` + themis_neo4j.AttrAnonID + `: $anonID}]->(:` + themis_neo4j.LabelCase + `)
    RETURN u.` + themis_neo4j.AttrID + ` as subjectID
    `
	result, err := session.Run(query, map[string]interface{}{"anonID": anonID})
	if err != nil {
		return "", fmt.Errorf("failed to execute resolve pseudonym query: %w", err)
	}

	if result.Next() {
		if subjectID, found := result.Record().Get("subjectID"); found {
			return subjectID.(string), nil
		}
	}

	return "", themis_errors.ErrNotFound
}

// HasAssignment reports whether a pseudonym links the subject to the case.
func (dao *VaultDAO) HasAssignment(ctx context.Context, subjectID, caseID string) (bool, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (u:` + themis_neo4j.LabelUser + ` {id: $subjectID})-[r:` + themis_neo4j.RelAssignedTo + `]->(c:` + themis_neo4j.LabelCase + ` {id: $caseID})
    RETURN r.anonId as anonId
    `
	result, err := session.Run(query, map[string]interface{}{
		"subjectID": subjectID,
		"caseID":    caseID,
	})
	if err != nil {
		return false, fmt.Errorf("failed to execute has assignment query: %w", err)
	}

	return result.Next(), nil
}

// GetAssignment is the Case/Assignment Store read contract: the pseudonymous
// view of who is attached to a case. The real subject id never appears in
// the result.
func (dao *VaultDAO) GetAssignment(ctx context.Context, caseID string) (*model.CaseAssignment, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (:` + themis_neo4j.LabelUser + `)-[r:` + themis_neo4j.RelAssignedTo + `]->(c:` + themis_neo4j.LabelCase + ` {` + themis_neo4j.AttrID + `: $caseID})
    RETURN r.` + themis_neo4j.AttrAnonID + ` as anonId, r.` + themis_neo4j.AttrRole + ` as role
    LIMIT 1
    `
	result, err := session.Run(query, map[string]interface{}{"caseID": caseID})
	if err != nil {
		return nil, fmt.Errorf("failed to execute get assignment query: %w", err)
	}

	if result.Next() {
		record := result.Record()
		anonID, _ := record.Get("anonId")
		role, _ := record.Get("role")
		assignment := &model.CaseAssignment{
			AnonActorID: anonID.(string),
		}
		if r, ok := role.(string); ok {
			assignment.Role = r
		}
		return assignment, nil
	}

	return nil, themis_errors.ErrNotFound
}

// Helper function to parse time
func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}
