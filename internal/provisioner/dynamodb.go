// Where: internal/provisioner/dynamodb.go
// What: DynamoDB provisioning steps.
// Why: Create the lookup table the image processor writes to.
package provisioner

import (
	"context"
	"errors"
	"fmt"
)

type DynamoDBAPI interface {
	ListTables(ctx context.Context) ([]string, error)
	CreateTable(ctx context.Context, spec TableSpec) error
	DeleteTable(ctx context.Context, name string) error
}

// TableSpec describes a single-key table.
type TableSpec struct {
	Name             string
	PartitionKey     string
	PartitionKeyType string
	BillingMode      string
}

func (p *applier) tables(ctx context.Context) {
	if len(p.stack.Tables) == 0 || p.clients.DynamoDB == nil {
		return
	}
	existing := map[string]struct{}{}
	if names, err := p.clients.DynamoDB.ListTables(ctx); err == nil {
		for _, name := range names {
			existing[name] = struct{}{}
		}
	}

	for _, table := range p.stack.Tables {
		name := table.PhysicalName()
		if _, ok := existing[name]; ok {
			fmt.Fprintf(p.out, "Table '%s' already exists. Skipping.\n", name)
			continue
		}
		spec := TableSpec{
			Name:             name,
			PartitionKey:     table.PartitionKey.Name,
			PartitionKeyType: table.PartitionKey.Type,
			BillingMode:      table.BillingMode,
		}
		if err := p.clients.DynamoDB.CreateTable(ctx, spec); err != nil {
			p.fail("Failed to create table %s: %v", name, err)
			continue
		}
		fmt.Fprintf(p.out, "✅ Created DynamoDB Table: %s\n", name)
	}
}

func (p *applier) deleteTables(ctx context.Context) {
	if p.clients.DynamoDB == nil {
		return
	}
	for _, table := range p.stack.Tables {
		name := table.PhysicalName()
		err := p.clients.DynamoDB.DeleteTable(ctx, name)
		switch {
		case errors.Is(err, ErrNotFound):
			fmt.Fprintf(p.out, "Table '%s' not found. Skipping.\n", name)
		case err != nil:
			p.fail("Failed to delete table %s: %v", name, err)
		default:
			fmt.Fprintf(p.out, "🗑  Deleted DynamoDB Table: %s\n", name)
		}
	}
}
