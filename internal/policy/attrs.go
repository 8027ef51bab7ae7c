package policy

// Attributes read by the Default policy.
const (
	AttrNonScriptable     = "NonScriptable"
	AttrImported          = "Imported"
	AttrScriptName        = "ScriptName"
	AttrIntrinsicProperty = "IntrinsicProperty"
	AttrInlineCode        = "InlineCode"
	AttrStaticFactory     = "StaticFactory"
	AttrNoBackingField    = "NoBackingField"
	AttrNativeAccessor    = "NativeAccessor"
	AttrStaticWithThis    = "StaticWithThis"
	AttrJson              = "ObjectLiteral"
	AttrIgnoreGenerics    = "IgnoreGenericArguments"
)
