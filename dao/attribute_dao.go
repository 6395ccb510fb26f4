// api/dao/attribute_dao.go
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

type AttributeDAO struct {
	Driver neo4j.Driver
}

func NewAttributeDAO(driver neo4j.Driver) *AttributeDAO {
	dao := &AttributeDAO{Driver: driver}
	ctx := context.Background()
	if err := dao.EnsureConstraints(ctx); err != nil {
		logger.Fatal("Failed to ensure attribute constraints", zap.Error(err))
	}
	return dao
}

// EnsureConstraints ensures unique constraints on attribute names and grant IDs
func (dao *AttributeDAO) EnsureConstraints(ctx context.Context) error {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer func() {
		if err := session.Close(); err != nil {
			logger.Error("Failed to close Neo4j session", zap.Error(err))
		}
	}()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		queries := []string{
			`CREATE CONSTRAINT unique_attribute_name IF NOT EXISTS
			 FOR (a:` + themis_neo4j.LabelAttribute + `) REQUIRE a.name IS UNIQUE`,
			`CREATE CONSTRAINT unique_grant_id IF NOT EXISTS
			 FOR (g:` + themis_neo4j.LabelGrant + `) REQUIRE g.id IS UNIQUE`,
		}
		for _, query := range queries {
			if _, err := transaction.Run(query, nil); err != nil {
				return nil, fmt.Errorf("failed to create constraint: %w", err)
			}
		}
		return nil, nil
	})
	if err != nil {
		logger.Error("Failed to ensure attribute constraints", zap.Error(err))
		return err
	}

	return nil
}

// CreateAttribute creates a new catalog attribute node. Catalog entries are
// immutable; there is no update path.
func (dao *AttributeDAO) CreateAttribute(ctx context.Context, attribute model.Attribute) (string, error) {
	start := time.Now()
	logger.Info("Creating catalog attribute", zap.String("name", attribute.Name))
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	if attribute.ID == "" {
		attribute.ID = uuid.New().String()
	}

	result, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		checkQuery := `
        MATCH (a:` + themis_neo4j.LabelAttribute + ` {name: $name})
        RETURN a.id
        `
		checkResult, err := transaction.Run(checkQuery, map[string]interface{}{"name": attribute.Name})
		if err != nil {
			return nil, themis_errors.ErrDatabaseOperation
		}
		if checkResult.Next() {
			return nil, themis_errors.ErrAttributeConflict
		}

		createQuery := `
        CREATE (a:` + themis_neo4j.LabelAttribute + ` {
            id: $id, name: $name, category: $category, level: $level, description: $description
        })
        RETURN a.id as id
        `
		createResult, err := transaction.Run(createQuery, map[string]interface{}{
			"id":          attribute.ID,
			"name":        attribute.Name,
			"category":    string(attribute.Category),
			"level":       attribute.Level,
			"description": attribute.Description,
		})
		if err != nil {
			return nil, themis_errors.ErrDatabaseOperation
		}
		if createResult.Next() {
			id, found := createResult.Record().Get("id")
			if !found {
				return nil, themis_errors.ErrInternalServer
			}
			return id, nil
		}
		return nil, themis_errors.ErrInternalServer
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to create catalog attribute",
			zap.Error(err),
			zap.String("name", attribute.Name),
			zap.Duration("duration", duration))
		return "", err
	}

	attributeID := fmt.Sprintf("%v", result)
	logger.Info("Catalog attribute created successfully",
		zap.String("attributeID", attributeID),
		zap.Duration("duration", duration))
	return attributeID, nil
}

// GetAttributeByName retrieves a catalog attribute by its unique name.
func (dao *AttributeDAO) GetAttributeByName(ctx context.Context, name string) (*model.Attribute, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (a:` + themis_neo4j.LabelAttribute + ` {name: $name})
    RETURN a
    `
	result, err := session.Run(query, map[string]interface{}{"name": name})
	if err != nil {
		return nil, fmt.Errorf("failed to execute get attribute query: %w", err)
	}

	if result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		return mapNodeToAttribute(node)
	}

	return nil, themis_errors.ErrAttributeNotFound
}

// ListAttributes retrieves the full catalog.
func (dao *AttributeDAO) ListAttributes(ctx context.Context) ([]*model.Attribute, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (a:` + themis_neo4j.LabelAttribute + `)
    RETURN a
    ORDER BY a.name
    `
	result, err := session.Run(query, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to execute list attributes query: %w", err)
	}

	var attributes []*model.Attribute
	for result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		attribute, err := mapNodeToAttribute(node)
		if err != nil {
			return nil, err
		}
		attributes = append(attributes, attribute)
	}

	return attributes, nil
}

// GetUserRole returns the platform role recorded on a user node.
func (dao *AttributeDAO) GetUserRole(ctx context.Context, subjectID string) (string, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (u:` + themis_neo4j.LabelUser + ` {id: $subjectID})
    RETURN u.role as role
    `
	result, err := session.Run(query, map[string]interface{}{"subjectID": subjectID})
	if err != nil {
		return "", fmt.Errorf("failed to execute get user role query: %w", err)
	}

	if result.Next() {
		if role, found := result.Record().Get("role"); found && role != nil {
			return role.(string), nil
		}
		return "", nil
	}

	return "", themis_errors.ErrNotFound
}

// CreateGrant issues an attribute grant to a subject. The auditor invariant
// is enforced by the service layer before this call; the DAO only persists.
func (dao *AttributeDAO) CreateGrant(ctx context.Context, grant model.AttributeGrant) (string, error) {
	start := time.Now()
	logger.Info("Creating attribute grant",
		zap.String("subjectID", grant.SubjectID),
		zap.String("attribute", grant.AttributeName))
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	if grant.ID == "" {
		grant.ID = uuid.New().String()
	}

	result, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (u:` + themis_neo4j.LabelUser + ` {id: $subjectID})
        MATCH (a:` + themis_neo4j.LabelAttribute + ` {name: $attributeName})
        CREATE (g:` + themis_neo4j.LabelGrant + ` {
            id: $id, grantedBy: $grantedBy, grantedAt: $grantedAt,
            expiresAt: $expiresAt, reason: $reason
        })
        CREATE (u)-[:` + themis_neo4j.RelHoldsGrant + `]->(g)
        CREATE (g)-[:` + themis_neo4j.RelOfAttribute + `]->(a)
        RETURN g.id as id
        `
		createResult, err := transaction.Run(query, map[string]interface{}{
			"id":            grant.ID,
			"subjectID":     grant.SubjectID,
			"attributeName": grant.AttributeName,
			"grantedBy":     grant.GrantedBy,
			"grantedAt":     grant.GrantedAt.UTC().Format(time.RFC3339),
			"expiresAt":     formatNullableTime(grant.ExpiresAt),
			"reason":        grant.Reason,
		})
		if err != nil {
			return nil, themis_errors.ErrDatabaseOperation
		}
		if createResult.Next() {
			id, found := createResult.Record().Get("id")
			if !found {
				return nil, themis_errors.ErrInternalServer
			}
			return id, nil
		}
		// No row means the subject or the attribute does not exist.
		return nil, themis_errors.ErrInvalidGrantData
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to create attribute grant",
			zap.Error(err),
			zap.String("subjectID", grant.SubjectID),
			zap.String("attribute", grant.AttributeName),
			zap.Duration("duration", duration))
		return "", err
	}

	grantID := fmt.Sprintf("%v", result)
	logger.Info("Attribute grant created successfully",
		zap.String("grantID", grantID),
		zap.Duration("duration", duration))
	return grantID, nil
}

// RevokeGrant expires a grant immediately. Revocation takes effect on the
// next evaluation because grants are never cached.
func (dao *AttributeDAO) RevokeGrant(ctx context.Context, grantID string) error {
	start := time.Now()
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (g:` + themis_neo4j.LabelGrant + ` {id: $id})
        SET g.expiresAt = $now
        RETURN g.id
        `
		result, err := transaction.Run(query, map[string]interface{}{
			"id":  grantID,
			"now": time.Now().UTC().Format(time.RFC3339),
		})
		if err != nil {
			return nil, themis_errors.ErrDatabaseOperation
		}
		if !result.Next() {
			return nil, themis_errors.ErrGrantNotFound
		}
		return nil, nil
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to revoke grant",
			zap.Error(err),
			zap.String("grantID", grantID),
			zap.Duration("duration", duration))
		return err
	}

	logger.Info("Grant revoked successfully",
		zap.String("grantID", grantID),
		zap.Duration("duration", duration))
	return nil
}

// ListActiveGrants is the Attribute Store read contract used by the
// evaluator: active grants only, already joined with the catalog.
func (dao *AttributeDAO) ListActiveGrants(ctx context.Context, subjectID string) ([]model.ActiveGrant, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (u:` + themis_neo4j.LabelUser + ` {id: $subjectID})-[:` + themis_neo4j.RelHoldsGrant + `]->(g:` + themis_neo4j.LabelGrant + `)-[:` + themis_neo4j.RelOfAttribute + `]->(a:` + themis_neo4j.LabelAttribute + `)
    WHERE g.expiresAt IS NULL OR g.expiresAt > $now
    RETURN a.name as name, a.category as category, a.level as level
    `
	// Expiry is compared lexically in Cypher; timestamps are stored and
	// compared in UTC so string order matches time order.
	result, err := session.Run(query, map[string]interface{}{
		"subjectID": subjectID,
		"now":       time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to execute list active grants query: %w", err)
	}

	var grants []model.ActiveGrant
	for result.Next() {
		record := result.Record()
		name, _ := record.Get("name")
		category, _ := record.Get("category")
		level, _ := record.Get("level")
		grant := model.ActiveGrant{
			AttributeName: name.(string),
			Category:      model.AttributeCategory(category.(string)),
		}
		if l, ok := level.(int64); ok {
			grant.Level = int(l)
		}
		grants = append(grants, grant)
	}

	return grants, nil
}

// Helper function to map Neo4j Node to Attribute struct
func mapNodeToAttribute(node neo4j.Node) (*model.Attribute, error) {
	props := node.Props
	attribute := &model.Attribute{}

	if id, ok := props["id"].(string); ok {
		attribute.ID = id
	} else {
		return nil, fmt.Errorf("failed to assert type for attribute ID: %v", props["id"])
	}

	if name, ok := props["name"].(string); ok {
		attribute.Name = name
	} else {
		return nil, fmt.Errorf("failed to assert type for attribute name: %v", props["name"])
	}

	if category, ok := props["category"].(string); ok {
		attribute.Category = model.AttributeCategory(category)
	} else {
		return nil, fmt.Errorf("failed to assert type for attribute category: %v", props["category"])
	}

	if level, ok := props["level"].(int64); ok {
		attribute.Level = int(level)
	}

	if description, ok := props["description"].(string); ok {
		attribute.Description = description
	}

	return attribute, nil
}

// Helper function to format nullable time. Always UTC: stored timestamps
// are compared as strings, so a mixed-offset store would order wrongly.
func formatNullableTime(t *time.Time) interface{} {
	if t != nil {
		return t.UTC().Format(time.RFC3339)
	}
	return nil
}
