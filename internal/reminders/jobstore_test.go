package reminders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockDynamo struct {
	putInput     *dynamodb.PutItemInput
	updateInputs []*dynamodb.UpdateItemInput
	getOutput    *dynamodb.GetItemOutput
	err          error
}

func (m *mockDynamo) PutItem(_ context.Context, input *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	m.putInput = input
	return &dynamodb.PutItemOutput{}, m.err
}

func (m *mockDynamo) UpdateItem(_ context.Context, input *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	m.updateInputs = append(m.updateInputs, input)
	return &dynamodb.UpdateItemOutput{}, m.err
}

func (m *mockDynamo) GetItem(_ context.Context, _ *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if m.getOutput == nil {
		return &dynamodb.GetItemOutput{}, m.err
	}
	return m.getOutput, m.err
}

func TestJobStorePutQueuedPersistsDefaults(t *testing.T) {
	mock := &mockDynamo{}
	store := NewJobStore(mock, "schedule_jobs", nil)

	job := &JobRecord{JobID: "job-123", PatientID: "p1", Date: "2024-01-01"}
	require.NoError(t, store.PutQueued(context.Background(), job))
	require.NotNil(t, mock.putInput)

	var stored JobRecord
	require.NoError(t, attributevalue.UnmarshalMap(mock.putInput.Item, &stored))
	assert.Equal(t, JobStatusQueued, stored.Status)
	assert.NotEmpty(t, stored.CreatedAt)
	assert.Greater(t, stored.ExpiresAt, time.Now().Unix())

	require.NotNil(t, mock.putInput.ConditionExpression)
	assert.Equal(t, "attribute_not_exists(jobId)", *mock.putInput.ConditionExpression)
}

func TestJobStorePutQueuedNilJob(t *testing.T) {
	store := NewJobStore(&mockDynamo{}, "schedule_jobs", nil)
	assert.Error(t, store.PutQueued(context.Background(), nil))
}

func TestJobStoreMarkCompletedUsesReservedAttributeNames(t *testing.T) {
	mock := &mockDynamo{}
	store := NewJobStore(mock, "schedule_jobs", nil)

	require.NoError(t, store.MarkCompleted(context.Background(), "job-123", 4))
	require.Len(t, mock.updateInputs, 1)

	update := mock.updateInputs[0]
	assert.Equal(t, "status", update.ExpressionAttributeNames["#status"])
	assert.Equal(t, &types.AttributeValueMemberS{Value: "completed"},
		update.ExpressionAttributeValues[":status"])
	assert.Equal(t, &types.AttributeValueMemberN{Value: "4"},
		update.ExpressionAttributeValues[":slots"])
}

func TestJobStoreMarkFailedRecordsError(t *testing.T) {
	mock := &mockDynamo{}
	store := NewJobStore(mock, "schedule_jobs", nil)

	require.NoError(t, store.MarkFailed(context.Background(), "job-123", "db down"))
	require.Len(t, mock.updateInputs, 1)
	assert.Equal(t, &types.AttributeValueMemberS{Value: "db down"},
		mock.updateInputs[0].ExpressionAttributeValues[":error"])
}

func TestJobStoreGetJobNotFound(t *testing.T) {
	store := NewJobStore(&mockDynamo{}, "schedule_jobs", nil)

	_, err := store.GetJob(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestJobStoreGetJobRoundTrip(t *testing.T) {
	item, err := attributevalue.MarshalMap(&JobRecord{
		JobID:     "job-123",
		PatientID: "p1",
		Date:      "2024-01-01",
		Status:    JobStatusCompleted,
		SlotCount: 3,
	})
	require.NoError(t, err)

	store := NewJobStore(&mockDynamo{getOutput: &dynamodb.GetItemOutput{Item: item}}, "schedule_jobs", nil)
	job, err := store.GetJob(context.Background(), "job-123")
	require.NoError(t, err)
	assert.Equal(t, JobStatusCompleted, job.Status)
	assert.Equal(t, 3, job.SlotCount)
}

func TestJobStorePropagatesClientErrors(t *testing.T) {
	store := NewJobStore(&mockDynamo{err: errors.New("throttled")}, "schedule_jobs", nil)
	assert.Error(t, store.MarkProcessing(context.Background(), "job-123"))
}
