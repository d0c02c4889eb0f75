package wechat

import "paygate/provider"

// Register WeChat Pay provider with the gateway registry
func init() {
	provider.Register("wechat", NewProvider)
}
