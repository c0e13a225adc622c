package riva

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
)

// recognizeMethod is the unary offline recognition RPC.
const recognizeMethod = "/nvidia.riva.asr.RivaSpeechRecognition/Recognize"

// linearPCM is nvidia.riva.AudioEncoding.LINEAR_PCM.
const linearPCM = 1

// The subset of riva_asr.proto lma speaks, declared at runtime so no generated
// code is needed. Field numbers match the upstream schema; the encoding enum is
// declared as int32, which is wire compatible.
var (
	recognizeRequestDesc  protoreflect.MessageDescriptor
	recognizeResponseDesc protoreflect.MessageDescriptor
)

func init() {
	file, err := buildASRFile()
	if err != nil {
		panic(fmt.Sprintf("riva: build descriptors: %v", err))
	}
	messages := file.Messages()
	recognizeRequestDesc = messages.ByName("RecognizeRequest")
	recognizeResponseDesc = messages.ByName("RecognizeResponse")
}

func buildASRFile() (protoreflect.FileDescriptor, error) {
	field := func(name string, number int32, kind descriptorpb.FieldDescriptorProto_Type, typeName string, repeated bool) *descriptorpb.FieldDescriptorProto {
		label := descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL
		if repeated {
			label = descriptorpb.FieldDescriptorProto_LABEL_REPEATED
		}
		f := &descriptorpb.FieldDescriptorProto{
			Name:     proto.String(name),
			JsonName: proto.String(name),
			Number:   proto.Int32(number),
			Label:    label.Enum(),
			Type:     kind.Enum(),
		}
		if typeName != "" {
			f.TypeName = proto.String(typeName)
		}
		return f
	}
	message := func(name string, fields ...*descriptorpb.FieldDescriptorProto) *descriptorpb.DescriptorProto {
		return &descriptorpb.DescriptorProto{Name: proto.String(name), Field: fields}
	}

	const (
		tString  = descriptorpb.FieldDescriptorProto_TYPE_STRING
		tBytes   = descriptorpb.FieldDescriptorProto_TYPE_BYTES
		tInt32   = descriptorpb.FieldDescriptorProto_TYPE_INT32
		tBool    = descriptorpb.FieldDescriptorProto_TYPE_BOOL
		tFloat   = descriptorpb.FieldDescriptorProto_TYPE_FLOAT
		tMessage = descriptorpb.FieldDescriptorProto_TYPE_MESSAGE
	)

	fdp := &descriptorpb.FileDescriptorProto{
		Name:    proto.String("lma/riva_asr_subset.proto"),
		Package: proto.String("nvidia.riva.asr"),
		Syntax:  proto.String("proto3"),
		MessageType: []*descriptorpb.DescriptorProto{
			message("SpeechContext",
				field("phrases", 1, tString, "", true),
				field("boost", 4, tFloat, "", false),
			),
			message("RecognitionConfig",
				field("encoding", 1, tInt32, "", false),
				field("sample_rate_hertz", 2, tInt32, "", false),
				field("language_code", 3, tString, "", false),
				field("max_alternatives", 4, tInt32, "", false),
				field("speech_contexts", 6, tMessage, ".nvidia.riva.asr.SpeechContext", true),
				field("audio_channel_count", 7, tInt32, "", false),
				field("enable_automatic_punctuation", 11, tBool, "", false),
				field("model", 13, tString, "", false),
			),
			message("RecognizeRequest",
				field("config", 1, tMessage, ".nvidia.riva.asr.RecognitionConfig", false),
				field("audio", 2, tBytes, "", false),
			),
			message("SpeechRecognitionAlternative",
				field("transcript", 1, tString, "", false),
				field("confidence", 2, tFloat, "", false),
			),
			message("SpeechRecognitionResult",
				field("alternatives", 1, tMessage, ".nvidia.riva.asr.SpeechRecognitionAlternative", true),
				field("channel_tag", 2, tInt32, "", false),
				field("audio_processed", 3, tFloat, "", false),
			),
			message("RecognizeResponse",
				field("results", 1, tMessage, ".nvidia.riva.asr.SpeechRecognitionResult", true),
			),
		},
	}
	return protodesc.NewFile(fdp, nil)
}
