package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/ricover/ricover/pkg/utils"
)

// CallerIdentity represents the AWS identity a scan runs as
type CallerIdentity struct {
	Account string
	Arn     string
	UserID  string
}

// GetCallerIdentity returns the identity behind the given config
func GetCallerIdentity(ctx context.Context, cfg aws.Config) (*CallerIdentity, error) {
	client := sts.NewFromConfig(cfg)

	output, err := client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return nil, fmt.Errorf("error querying caller identity: %w", err)
	}

	return &CallerIdentity{
		Account: utils.SafeDeref(output.Account),
		Arn:     utils.SafeDeref(output.Arn),
		UserID:  utils.SafeDeref(output.UserId),
	}, nil
}
