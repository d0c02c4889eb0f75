package alipay

import "paygate/provider"

// Register Alipay provider with the gateway registry
func init() {
	provider.Register("alipay", NewProvider)
}
