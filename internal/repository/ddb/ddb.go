// Package ddb implements the Repository interface on a DynamoDB
// single-table design.
//
// Key layout:
//
//	Decision     PK=USER#<userID>       SK=DECISION#<decisionID>
//	Branch       PK=DECISION#<id>       SK=BRANCH#<branchID>      GSI1PK=BRANCH#<branchID>
//	Conversation PK=BRANCH#<id>         SK=CONV#<conversationID>
//	Comparison   PK=DECISION#<id>       SK=COMPARISON#<id>
//	Group        PK=USER#<userID>       SK=GROUP#<groupID>
//	Event        PK=USER#<userID>       SK=EVENT#<createdAt>#<id>
//
// Branches carry a GSI1 projection so they can be found by branch ID
// alone, without knowing the owning decision.
package ddb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"branchpoint-backend/internal/domain"
	appErrors "branchpoint-backend/pkg/errors"
)

const (
	pkUser     = "USER#"
	pkDecision = "DECISION#"
	pkBranch   = "BRANCH#"

	skDecision   = "DECISION#"
	skBranch     = "BRANCH#"
	skConv       = "CONV#"
	skComparison = "COMPARISON#"
	skGroup      = "GROUP#"
	skEvent      = "EVENT#"
)

// Repository is the DynamoDB-backed store for decisions and their children.
type Repository struct {
	client    *dynamodb.Client
	tableName string
	indexName string
}

// NewRepository wires a DynamoDB client to the given table. indexName is the
// GSI used for branch-by-ID lookups (GSI1PK).
func NewRepository(client *dynamodb.Client, tableName, indexName string) *Repository {
	return &Repository{
		client:    client,
		tableName: tableName,
		indexName: indexName,
	}
}

// decisionRecord is the persisted shape of a Decision. The key attributes
// live alongside the marshalled fields.
type decisionRecord struct {
	PK string `dynamodbav:"PK"`
	SK string `dynamodbav:"SK"`
	domain.Decision
}

type branchRecord struct {
	PK     string `dynamodbav:"PK"`
	SK     string `dynamodbav:"SK"`
	GSI1PK string `dynamodbav:"GSI1PK"`
	GSI1SK string `dynamodbav:"GSI1SK"`
	domain.Branch
}

type conversationRecord struct {
	PK string `dynamodbav:"PK"`
	SK string `dynamodbav:"SK"`
	domain.Conversation
}

type comparisonRecord struct {
	PK string `dynamodbav:"PK"`
	SK string `dynamodbav:"SK"`
	domain.Comparison
}

type groupRecord struct {
	PK string `dynamodbav:"PK"`
	SK string `dynamodbav:"SK"`
	domain.DecisionGroup
}

type eventRecord struct {
	PK string `dynamodbav:"PK"`
	SK string `dynamodbav:"SK"`
	domain.Event
}

func (r *Repository) putItem(ctx context.Context, record interface{}) error {
	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return appErrors.Wrap(err, "failed to marshal item")
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		return appErrors.Wrap(err, "DynamoDB PutItem failed")
	}
	return nil
}

func (r *Repository) queryPrefix(ctx context.Context, pk, skPrefix string) ([]map[string]types.AttributeValue, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(pk)).
		And(expression.Key("SK").BeginsWith(skPrefix))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to build query expression")
	}

	var items []map[string]types.AttributeValue
	var lastKey map[string]types.AttributeValue
	for {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(r.tableName),
			KeyConditionExpression:    expr.KeyCondition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         lastKey,
		})
		if err != nil {
			return nil, appErrors.Wrap(err, "DynamoDB Query failed")
		}
		items = append(items, out.Items...)
		if out.LastEvaluatedKey == nil {
			break
		}
		lastKey = out.LastEvaluatedKey
	}
	return items, nil
}

func (r *Repository) CreateDecision(ctx context.Context, d domain.Decision) error {
	return r.putItem(ctx, decisionRecord{
		PK:       pkUser + d.UserID,
		SK:       skDecision + d.DecisionID,
		Decision: d,
	})
}

func (r *Repository) FindDecision(ctx context.Context, userID, decisionID string) (*domain.Decision, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pkUser + userID},
			"SK": &types.AttributeValueMemberS{Value: skDecision + decisionID},
		},
	})
	if err != nil {
		return nil, appErrors.Wrap(err, "DynamoDB GetItem failed")
	}
	if out.Item == nil {
		return nil, nil
	}
	var record decisionRecord
	if err := attributevalue.UnmarshalMap(out.Item, &record); err != nil {
		return nil, appErrors.Wrap(err, "failed to unmarshal decision")
	}
	return &record.Decision, nil
}

func (r *Repository) ListDecisions(ctx context.Context, userID string) ([]domain.Decision, error) {
	items, err := r.queryPrefix(ctx, pkUser+userID, skDecision)
	if err != nil {
		return nil, err
	}
	decisions := make([]domain.Decision, 0, len(items))
	for _, item := range items {
		var record decisionRecord
		if err := attributevalue.UnmarshalMap(item, &record); err != nil {
			return nil, appErrors.Wrap(err, "failed to unmarshal decision")
		}
		decisions = append(decisions, record.Decision)
	}
	return decisions, nil
}

// SaveDecision overwrites the stored decision. The item must already exist;
// create-then-save races are not a concern because decisions are only
// mutated by their owner.
func (r *Repository) SaveDecision(ctx context.Context, d domain.Decision) error {
	return r.CreateDecision(ctx, d)
}

func (r *Repository) CreateBranch(ctx context.Context, b domain.Branch) error {
	return r.putItem(ctx, branchRecord{
		PK:     pkDecision + b.DecisionID,
		SK:     skBranch + b.BranchID,
		GSI1PK: pkBranch + b.BranchID,
		GSI1SK: pkDecision + b.DecisionID,
		Branch: b,
	})
}

func (r *Repository) FindBranch(ctx context.Context, branchID string) (*domain.Branch, error) {
	keyCond := expression.Key("GSI1PK").Equal(expression.Value(pkBranch + branchID))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to build query expression")
	}
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(r.indexName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, appErrors.Wrap(err, "DynamoDB Query failed")
	}
	if len(out.Items) == 0 {
		return nil, nil
	}
	var record branchRecord
	if err := attributevalue.UnmarshalMap(out.Items[0], &record); err != nil {
		return nil, appErrors.Wrap(err, "failed to unmarshal branch")
	}
	return &record.Branch, nil
}

func (r *Repository) ListBranches(ctx context.Context, decisionID string) ([]domain.Branch, error) {
	items, err := r.queryPrefix(ctx, pkDecision+decisionID, skBranch)
	if err != nil {
		return nil, err
	}
	branches := make([]domain.Branch, 0, len(items))
	for _, item := range items {
		var record branchRecord
		if err := attributevalue.UnmarshalMap(item, &record); err != nil {
			return nil, appErrors.Wrap(err, "failed to unmarshal branch")
		}
		branches = append(branches, record.Branch)
	}
	return branches, nil
}

func (r *Repository) MarkBranchSimulated(ctx context.Context, branchID string, at time.Time) error {
	branch, err := r.FindBranch(ctx, branchID)
	if err != nil {
		return err
	}
	if branch == nil {
		return appErrors.NewNotFound("branch not found")
	}

	update := expression.Set(expression.Name("LastSimulatedAt"), expression.Value(at.Format(time.RFC3339Nano)))
	expr, err := expression.NewBuilder().WithUpdate(update).Build()
	if err != nil {
		return appErrors.Wrap(err, "failed to build update expression")
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pkDecision + branch.DecisionID},
			"SK": &types.AttributeValueMemberS{Value: skBranch + branchID},
		},
		UpdateExpression:          expr.Update(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return appErrors.Wrap(err, "DynamoDB UpdateItem failed")
	}
	return nil
}

func (r *Repository) CreateConversation(ctx context.Context, c domain.Conversation) error {
	return r.putItem(ctx, conversationRecord{
		PK:           pkBranch + c.BranchID,
		SK:           skConv + c.ConversationID,
		Conversation: c,
	})
}

func (r *Repository) ListConversations(ctx context.Context, branchID string) ([]domain.Conversation, error) {
	items, err := r.queryPrefix(ctx, pkBranch+branchID, skConv)
	if err != nil {
		return nil, err
	}
	conversations := make([]domain.Conversation, 0, len(items))
	for _, item := range items {
		var record conversationRecord
		if err := attributevalue.UnmarshalMap(item, &record); err != nil {
			return nil, appErrors.Wrap(err, "failed to unmarshal conversation")
		}
		conversations = append(conversations, record.Conversation)
	}
	return conversations, nil
}

func (r *Repository) CreateComparison(ctx context.Context, c domain.Comparison) error {
	return r.putItem(ctx, comparisonRecord{
		PK:         pkDecision + c.DecisionID,
		SK:         skComparison + c.ComparisonID,
		Comparison: c,
	})
}

func (r *Repository) CreateGroup(ctx context.Context, g domain.DecisionGroup) error {
	return r.putItem(ctx, groupRecord{
		PK:            pkUser + g.UserID,
		SK:            skGroup + g.GroupID,
		DecisionGroup: g,
	})
}

func (r *Repository) ListGroups(ctx context.Context, userID string) ([]domain.DecisionGroup, error) {
	items, err := r.queryPrefix(ctx, pkUser+userID, skGroup)
	if err != nil {
		return nil, err
	}
	groups := make([]domain.DecisionGroup, 0, len(items))
	for _, item := range items {
		var record groupRecord
		if err := attributevalue.UnmarshalMap(item, &record); err != nil {
			return nil, appErrors.Wrap(err, "failed to unmarshal group")
		}
		groups = append(groups, record.DecisionGroup)
	}
	return groups, nil
}

// AppendEvent stores an audit record keyed by creation time so the
// partition reads back in chronological order.
func (r *Repository) AppendEvent(ctx context.Context, e domain.Event) error {
	return r.putItem(ctx, eventRecord{
		PK:    pkUser + e.UserID,
		SK:    fmt.Sprintf("%s%s#%s", skEvent, e.CreatedAt.Format(time.RFC3339Nano), e.EventID),
		Event: e,
	})
}
